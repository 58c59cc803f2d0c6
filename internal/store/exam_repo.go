package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const activeExamKey = "active_exam"

// examRepo implements ExamRepo using ent's SQL builder.
type examRepo struct {
	drv *entsql.Driver
}

func (r *examRepo) Create(ctx context.Context, title string) (*Exam, error) {
	now := time.Now().UTC()
	e := &Exam{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableExams).
		Columns("id", "title", "cursor", "created_at", "updated_at").
		Values(e.ID, e.Title, 0, e.CreatedAt, e.UpdatedAt).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return e, nil
}

func (r *examRepo) Get(ctx context.Context, id string) (*Exam, error) {
	exams, err := r.query(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(exams) == 0 {
		return nil, fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	return &exams[0], nil
}

func (r *examRepo) List(ctx context.Context) ([]Exam, error) {
	return r.query(ctx, "")
}

func (r *examRepo) query(ctx context.Context, id string) ([]Exam, error) {
	t := entsql.Table(tableExams)
	sel := entsql.Dialect(dialect.SQLite).
		Select(t.C("id"), t.C("title"), t.C("cursor"), t.C("created_at"), t.C("updated_at")).
		From(t).
		OrderBy(entsql.Desc(t.C("updated_at")))
	if id != "" {
		sel.Where(entsql.EQ(t.C("id"), id))
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query exams: %w", err)
	}

	var exams []Exam
	for rows.Next() {
		var e Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.Cursor, &e.CreatedAt, &e.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan exam: %w", err)
		}
		exams = append(exams, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("query exams: %w", err)
	}
	rows.Close()

	for i := range exams {
		n, err := r.countEntries(ctx, exams[i].ID)
		if err != nil {
			return nil, err
		}
		exams[i].Entries = n
	}
	return exams, nil
}

func (r *examRepo) countEntries(ctx context.Context, id string) (int, error) {
	t := entsql.Table(tableSnapshots)
	query, args := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(t).
		Where(entsql.EQ(t.C("exam_id"), id)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scan count: %w", err)
		}
	}
	return n, rows.Err()
}

// snapshotBatch bounds the rows per INSERT. Each row binds four parameters,
// well under SQLite's 32766 variable limit.
const snapshotBatch = 200

func (r *examRepo) SaveHistory(ctx context.Context, id, title string, entries []json.RawMessage, cursor int) (err error) {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	b := entsql.Dialect(dialect.SQLite)
	now := time.Now().UTC()
	var res sql.Result

	query, args := b.Update(tableExams).
		Set("title", title).
		Set("cursor", cursor).
		Set("updated_at", now).
		Where(entsql.EQ("id", id)).
		Query()
	if err = tx.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("exam %s: %w", id, ErrNotFound)
		return err
	}

	query, args = b.Delete(tableSnapshots).Where(entsql.EQ("exam_id", id)).Query()
	if err = tx.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	for start := 0; start < len(entries); start += snapshotBatch {
		end := min(start+snapshotBatch, len(entries))
		ins := b.Insert(tableSnapshots).Columns("exam_id", "position", "data", "created_at")
		for i := start; i < end; i++ {
			ins.Values(id, i, string(entries[i]), now)
		}
		query, args = ins.Query()
		if err = tx.Exec(ctx, query, args, &res); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

func (r *examRepo) LoadHistory(ctx context.Context, id string) ([]json.RawMessage, int, error) {
	e, err := r.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	t := entsql.Table(tableSnapshots)
	query, args := entsql.Dialect(dialect.SQLite).
		Select(t.C("data")).
		From(t).
		Where(entsql.EQ(t.C("exam_id"), id)).
		OrderBy(t.C("position")).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, 0, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var entries []json.RawMessage
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, 0, fmt.Errorf("scan snapshot: %w", err)
		}
		entries = append(entries, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("load history: %w", err)
	}
	return entries, e.Cursor, nil
}

func (r *examRepo) Delete(ctx context.Context, id string) error {
	b := entsql.Dialect(dialect.SQLite)
	var res sql.Result

	query, args := b.Delete(tableSnapshots).Where(entsql.EQ("exam_id", id)).Query()
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}

	query, args = b.Delete(tableExams).Where(entsql.EQ("id", id)).Query()
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}

	active, err := r.Active(ctx)
	if err != nil {
		return err
	}
	if active == id {
		return r.SetActive(ctx, "")
	}
	return nil
}

func (r *examRepo) Active(ctx context.Context) (string, error) {
	t := entsql.Table(tableSettings)
	query, args := entsql.Dialect(dialect.SQLite).
		Select(t.C("value")).
		From(t).
		Where(entsql.EQ(t.C("key"), activeExamKey)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return "", fmt.Errorf("query active exam: %w", err)
	}
	defer rows.Close()

	var id string
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan active exam: %w", err)
		}
	}
	return id, rows.Err()
}

func (r *examRepo) SetActive(ctx context.Context, id string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableSettings).
		Columns("key", "value").
		Values(activeExamKey, id).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("set active exam: %w", err)
	}
	return nil
}
