// Package editor owns an exam document together with its undo history.
// Every user action goes through a Session, which commits exactly one
// snapshot per action.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/history"
	"github.com/sameane/physexam/internal/questiongen"
	"github.com/sameane/physexam/internal/store"
)

var (
	// ErrNoGenerator is returned by AI actions on a session built without
	// a generator.
	ErrNoGenerator = errors.New("no question generator configured")

	// ErrNotText is returned when UpdateText targets a question.
	ErrNotText = errors.New("item is not a text block")

	// ErrNoDiagram is returned by ModifyDiagram for a question without SVG.
	ErrNoDiagram = errors.New("question has no diagram")

	// ErrNoVisual is returned by DescribeVisual for a question with neither
	// an image nor a diagram.
	ErrNoVisual = errors.New("question has no image or diagram")

	// ErrNotPersisted is returned by Save for a session without a store.
	ErrNotPersisted = errors.New("session is not backed by a store")
)

// Session is the single owner of a document and its history.
//
// AI actions call the generator without holding the lock and commit the
// result against whatever document is current when the call returns, so a
// slow request never blocks readers. A failed action commits nothing.
type Session struct {
	mu  sync.Mutex
	log *history.Log[*exam.Document]
	gen questiongen.Generator

	repo   store.ExamRepo
	examID string
}

// Option configures a Session.
type Option func(*Session)

// WithGenerator enables the AI actions.
func WithGenerator(g questiongen.Generator) Option {
	return func(s *Session) { s.gen = g }
}

// WithStore makes Save persist the history of exam id through repo.
func WithStore(repo store.ExamRepo, id string) Option {
	return func(s *Session) {
		s.repo = repo
		s.examID = id
	}
}

// WithHistoryLimit caps the undo log at n snapshots, dropping the oldest.
// Sessions are unbounded by default.
func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.log = history.New[*exam.Document](n) }
}

// New starts a session whose history holds doc as its only snapshot.
// A nil doc starts from an empty, untitled exam.
func New(doc *exam.Document, opts ...Option) *Session {
	s := &Session{log: history.New[*exam.Document](0)}
	for _, o := range opts {
		o(s)
	}
	if doc == nil {
		doc = exam.New("")
	}
	s.log.Commit(doc.Clone())
	return s
}

// Open restores the persisted history of exam id. An exam created but
// never saved starts from an empty document with the stored title.
func Open(ctx context.Context, repo store.ExamRepo, id string, opts ...Option) (*Session, error) {
	header, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open exam %s: %w", id, err)
	}
	entries, cursor, err := repo.LoadHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load history of %s: %w", id, err)
	}

	opts = append(opts, WithStore(repo, id))
	if len(entries) == 0 {
		return New(exam.New(header.Title), opts...), nil
	}
	s := New(nil, opts...)
	if err := s.Restore(entries, cursor); err != nil {
		return nil, fmt.Errorf("restore history of %s: %w", id, err)
	}
	return s, nil
}

// ExamID returns the id of the stored exam, or "" for an unsaved session.
func (s *Session) ExamID() string { return s.examID }

// Current returns the current document. Callers must not modify it.
func (s *Session) Current() *exam.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Session) current() *exam.Document {
	d, _ := s.log.Current()
	return d
}

// Undo steps back one snapshot and reports whether it moved.
func (s *Session) Undo() (*exam.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.log.Undo(); !ok {
		return s.current(), false
	}
	return s.current(), true
}

// Redo steps forward one snapshot and reports whether it moved.
func (s *Session) Redo() (*exam.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.log.Redo(); !ok {
		return s.current(), false
	}
	return s.current(), true
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.CanRedo()
}

// Entry summarises one snapshot for history listings.
type Entry struct {
	Index     int
	Title     string
	Questions int
	Items     int
	Current   bool
}

// History lists the snapshots, oldest first.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.log.Entries()
	out := make([]Entry, len(docs))
	for i, d := range docs {
		out[i] = Entry{
			Index:     i,
			Title:     d.Title,
			Questions: len(d.Questions()),
			Items:     len(d.Items),
			Current:   i == s.log.Cursor(),
		}
	}
	return out
}

// apply commits fn(current) as one snapshot. Nothing is committed when fn
// fails.
func (s *Session) apply(fn func(d *exam.Document) (*exam.Document, error)) (*exam.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.current())
	if err != nil {
		return nil, err
	}
	s.log.Commit(next)
	return next, nil
}

// Snapshot encodes the history for storage.
func (s *Session) Snapshot() ([]json.RawMessage, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.log.Entries()
	entries := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		data, err := exam.Marshal(d)
		if err != nil {
			return nil, 0, fmt.Errorf("encode snapshot %d: %w", i, err)
		}
		entries[i] = data
	}
	return entries, s.log.Cursor(), nil
}

// Restore replaces the history with decoded entries. On error the session
// is left unchanged.
func (s *Session) Restore(entries []json.RawMessage, cursor int) error {
	if len(entries) == 0 {
		return errors.New("no snapshots to restore")
	}
	docs := make([]*exam.Document, len(entries))
	for i, raw := range entries {
		d, err := exam.Unmarshal(raw)
		if err != nil {
			return fmt.Errorf("decode snapshot %d: %w", i, err)
		}
		docs[i] = d
	}
	s.mu.Lock()
	s.log.Restore(docs, cursor)
	s.mu.Unlock()
	return nil
}

// Save persists the history to the backing store.
func (s *Session) Save(ctx context.Context) error {
	if s.repo == nil {
		return ErrNotPersisted
	}
	entries, cursor, err := s.Snapshot()
	if err != nil {
		return err
	}
	return s.repo.SaveHistory(ctx, s.examID, s.Current().Title, entries, cursor)
}
