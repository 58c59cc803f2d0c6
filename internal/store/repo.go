package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup by id matches nothing.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match ("" = any)
}

// Exam is the stored header of one exam.
type Exam struct {
	ID        string
	Title     string
	Cursor    int
	Entries   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExamRepo stores exams together with their undo history. Each history
// entry is an opaque JSON snapshot of the document.
type ExamRepo interface {
	// Create registers a new exam and returns its id.
	Create(ctx context.Context, title string) (*Exam, error)

	// Get returns the exam header, or ErrNotFound.
	Get(ctx context.Context, id string) (*Exam, error)

	// List returns all exams, most recently updated first.
	List(ctx context.Context) ([]Exam, error)

	// SaveHistory replaces the stored history of id atomically.
	SaveHistory(ctx context.Context, id, title string, entries []json.RawMessage, cursor int) error

	// LoadHistory returns the stored history and cursor of id.
	LoadHistory(ctx context.Context, id string) ([]json.RawMessage, int, error)

	// Delete removes the exam and its history.
	Delete(ctx context.Context, id string) error

	// Active returns the id of the exam CLI commands act on, or "".
	Active(ctx context.Context) (string, error)

	// SetActive selects the exam CLI commands act on.
	SetActive(ctx context.Context, id string) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStat aggregates requests by purpose.
type LLMUsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage by model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event by id, or nil when absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates all events by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStat, error)

	// LLMUsageByModel aggregates successful events by model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
