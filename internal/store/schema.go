package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableExams     = "exams"
	tableSnapshots = "exam_snapshots"
	tableSettings  = "settings"
	tableLLMEvents = "llm_request_events"
)

var (
	// ExamsColumns holds the columns of the exams table.
	ExamsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "cursor", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ExamsTable holds the schema of the exams table.
	ExamsTable = &schema.Table{
		Name:       tableExams,
		Columns:    ExamsColumns,
		PrimaryKey: []*schema.Column{ExamsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "exam_updated_at", Columns: []*schema.Column{ExamsColumns[4]}},
		},
	}

	// SnapshotsColumns holds the columns of the exam_snapshots table. Each
	// row is one history entry; position orders them.
	SnapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "exam_id", Type: field.TypeString, Size: 36},
		{Name: "position", Type: field.TypeInt},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// SnapshotsTable holds the schema of the exam_snapshots table.
	SnapshotsTable = &schema.Table{
		Name:       tableSnapshots,
		Columns:    SnapshotsColumns,
		PrimaryKey: []*schema.Column{SnapshotsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "exam_snapshots_exams_snapshots",
				Columns:    []*schema.Column{SnapshotsColumns[1]},
				RefColumns: []*schema.Column{ExamsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "examsnapshot_exam_id_position",
				Unique:  true,
				Columns: []*schema.Column{SnapshotsColumns[1], SnapshotsColumns[2]},
			},
		},
	}

	// SettingsColumns holds the columns of the settings key/value table.
	SettingsColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Size: 64},
		{Name: "value", Type: field.TypeString, Default: ""},
	}
	// SettingsTable holds the schema of the settings table.
	SettingsTable = &schema.Table{
		Name:       tableSettings,
		Columns:    SettingsColumns,
		PrimaryKey: []*schema.Column{SettingsColumns[0]},
	}

	// LLMEventsColumns holds the columns of the llm_request_events table.
	LLMEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMEventsTable holds the schema of the llm_request_events table.
	LLMEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    LLMEventsColumns,
		PrimaryKey: []*schema.Column{LLMEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_provider", Columns: []*schema.Column{LLMEventsColumns[3]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMEventsColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{LLMEventsColumns[9]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ExamsTable,
		SnapshotsTable,
		SettingsTable,
		LLMEventsTable,
	}
)

func init() {
	SnapshotsTable.ForeignKeys[0].RefTable = ExamsTable
}
