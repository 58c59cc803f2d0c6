package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/llm"
)

const incline = `{
	"text": "A \\(2\\,\\text{kg}\\) block slides down a frictionless incline of \\(30^\\circ\\). What is its acceleration?",
	"options": ["\\(4.9\\,\\text{m/s}^2\\)", "\\(9.8\\,\\text{m/s}^2\\)", "\\(8.5\\,\\text{m/s}^2\\)", "\\(2.5\\,\\text{m/s}^2\\)"],
	"correctAnswerIndex": 0,
	"explanation": "\\(a = g\\sin 30^\\circ = 4.9\\,\\text{m/s}^2\\)",
	"svgCode": "` + "```svg\\n<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 60'><path d='M0 60 L100 60 L100 0 Z'/></svg>\\n```" + `",
	"visualDescription": "A 30 degree incline with a block"
}`

const pendulum = `{
	"text": "What sets the period of a simple pendulum?",
	"options": ["Its length", "Its mass", "The amplitude", "The colour of the bob", "extra"],
	"correctAnswerIndex": 0,
	"explanation": "\\(T = 2\\pi\\sqrt{L/g}\\)",
	"svgCode": "",
	"visualDescription": "ignored without a diagram"
}`

func examJSON(questions ...string) json.RawMessage {
	return json.RawMessage(`{"questions":[` + strings.Join(questions, ",") + `]}`)
}

func validRequest() Request {
	return Request{Topic: "Dynamics", Count: 2, Difficulty: 5}
}

func TestGenerateExam(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: examJSON(incline, pendulum)})
	gen := New(mock, DefaultConfig())

	qs, err := gen.GenerateExam(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}

	q := qs[0]
	if q.ID != 0 {
		t.Errorf("expected unassigned id, got %d", q.ID)
	}
	if !strings.HasPrefix(q.Diagram, "<svg") || !strings.HasSuffix(q.Diagram, "</svg>") {
		t.Errorf("diagram not cleaned: %q", q.Diagram)
	}
	if q.VisualDescription == "" {
		t.Error("expected visual description with diagram")
	}
	if !q.Valid() {
		t.Errorf("unexpected validation error: %s", q.ValidationError)
	}

	p := qs[1]
	if p.Options[3] != "The colour of the bob" {
		t.Errorf("options not truncated to 4: %q", p.Options)
	}
	if p.VisualDescription != "" {
		t.Errorf("description without diagram should be dropped, got %q", p.VisualDescription)
	}

	call := mock.Calls[0]
	if call.Schema != ExamSchema {
		t.Error("expected exam schema")
	}
	if !strings.Contains(call.Messages[0].Content, `"Dynamics"`) {
		t.Errorf("topic missing from prompt: %s", call.Messages[0].Content)
	}
	if !strings.Contains(call.System, "Modern Standard Arabic") {
		t.Error("system prompt should name the language")
	}
}

func TestGenerateExam_ReferenceImage(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: examJSON(pendulum)})
	gen := New(mock, DefaultConfig())

	req := validRequest()
	req.Count = 1
	req.ReferenceImage = &llm.Image{MIMEType: "image/png", Data: []byte("png")}
	if _, err := gen.GenerateExam(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imgs := mock.Calls[0].Messages[0].Images; len(imgs) != 1 || imgs[0].MIMEType != "image/png" {
		t.Errorf("reference image not attached: %+v", imgs)
	}
}

func TestGenerateExam_TruncatesExtraQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: examJSON(pendulum, incline, pendulum)})
	gen := New(mock, DefaultConfig())

	qs, err := gen.GenerateExam(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
}

func TestGenerateExam_InvalidRequest(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"no topic", Request{Count: 3, Difficulty: 3}, "topic"},
		{"zero count", Request{Topic: "Optics", Difficulty: 3}, "count"},
		{"too many", Request{Topic: "Optics", Count: 51, Difficulty: 3}, "count"},
		{"difficulty low", Request{Topic: "Optics", Count: 3}, "difficulty"},
		{"difficulty high", Request{Topic: "Optics", Count: 3, Difficulty: 11}, "difficulty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			_, err := New(mock, DefaultConfig()).GenerateExam(context.Background(), tt.req)
			var rerr *RequestError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected RequestError, got %v", err)
			}
			if rerr.Field != tt.field {
				t.Errorf("field = %q, want %q", rerr.Field, tt.field)
			}
			if mock.CallCount() != 0 {
				t.Error("provider must not be called for an invalid request")
			}
		})
	}
}

func TestGenerateExam_ValidationFailure(t *testing.T) {
	bad := strings.Replace(pendulum, `"Its mass"`, `"Its length"`, 1)
	mock := llm.NewMockProvider(llm.MockResponse{Content: examJSON(incline, bad)})
	gen := New(mock, DefaultConfig())

	_, err := gen.GenerateExam(context.Background(), validRequest())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Validator != "structural" || verr.Index != 1 {
		t.Errorf("unexpected validation error: %+v", verr)
	}
	if !strings.Contains(verr.Error(), "question 2") {
		t.Errorf("error should name question 2: %v", verr)
	}
}

func TestGenerateExam_EmptyResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[]}`)})
	_, err := New(mock, DefaultConfig()).GenerateExam(context.Background(), validRequest())
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateExam_RateLimited(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	_, err := New(mock, DefaultConfig()).GenerateExam(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRateLimited(err) {
		t.Errorf("expected rate limited error, got %v", err)
	}
	if IsRateLimited(errors.New("boom")) {
		t.Error("plain error reported as rate limited")
	}
}

func TestGenerateVariant(t *testing.T) {
	doc := exam.New("Dynamics").AppendItems(
		&exam.TextBlock{Content: "Section A"},
		exam.NewQuestion("q1", [4]string{"a", "b", "c", "d"}, 1, ""),
		exam.NewQuestion("q2", [4]string{"a", "b", "c", "d"}, 2, ""),
	)
	mock := llm.NewMockProvider(llm.MockResponse{Content: examJSON(pendulum, incline)})
	gen := New(mock, DefaultConfig())

	qs, err := gen.GenerateVariant(context.Background(), doc, "use SI units")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	prompt := mock.Calls[0].Messages[0].Content
	for _, want := range []string{"exactly 2 questions", "1. q1", "2. q2", "use SI units"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if _, err := gen.GenerateVariant(context.Background(), exam.New("empty"), ""); err == nil {
		t.Error("expected error for a document without questions")
	}
}

func TestEditQuestion(t *testing.T) {
	orig := exam.NewQuestion("old", [4]string{"a", "b", "c", "d"}, 3, "")
	orig.ID = 7
	orig.Image = &exam.ImageRef{Source: "fig.png", Width: 200}
	orig.Diagram = "<svg></svg>"
	orig.VisualDescription = "old figure"

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(pendulum)})
	gen := New(mock, DefaultConfig())

	got, err := gen.EditQuestion(context.Background(), orig, EditRequest{Instructions: "make it harder", Difficulty: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 7 || got.Image != orig.Image {
		t.Errorf("id or image not kept: %+v", got)
	}
	if got.Diagram != orig.Diagram || got.VisualDescription != "old figure" {
		t.Errorf("existing diagram should be kept: %q / %q", got.Diagram, got.VisualDescription)
	}
	if got.Prompt == orig.Prompt {
		t.Error("prompt not replaced")
	}
	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "make it harder") || !strings.Contains(prompt, "8 out of 10") {
		t.Errorf("prompt = %s", prompt)
	}

	if _, err := gen.EditQuestion(context.Background(), orig, EditRequest{}); err == nil {
		t.Error("expected error for an empty edit request")
	}
}

func TestEditQuestion_ImageOnly(t *testing.T) {
	orig := exam.NewQuestion("old", [4]string{"a", "b", "c", "d"}, 0, "")
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(incline)})
	gen := New(mock, DefaultConfig())

	img := &llm.Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	got, err := gen.EditQuestion(context.Background(), orig, EditRequest{Image: img, WithDiagram: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Diagram == "" {
		t.Error("expected generated diagram")
	}
	msg := mock.Calls[0].Messages[0]
	if len(msg.Images) != 1 {
		t.Errorf("expected attached image")
	}
	if !strings.Contains(msg.Content, "attached image") || !strings.Contains(msg.Content, "SVG") {
		t.Errorf("prompt = %s", msg.Content)
	}
}

func TestExtractFromImage(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(pendulum)})
	gen := New(mock, DefaultConfig())

	q, err := gen.ExtractFromImage(context.Background(), llm.Image{MIMEType: "image/png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Correct != 0 || q.Options[0] != "Its length" {
		t.Errorf("unexpected question: %+v", q)
	}
	if mock.Calls[0].Temperature != DefaultConfig().ExtractTemperature {
		t.Errorf("temperature = %v", mock.Calls[0].Temperature)
	}
}

func TestRegenerateAnswerKey(t *testing.T) {
	q1 := exam.NewQuestion("q1", [4]string{"a", "b", "c", "d"}, 0, "")
	q1.ID = 1
	q2 := exam.NewQuestion("q2", [4]string{"a", "b", "c", "d"}, 0, "")
	q2.ID = 4
	q2.Image = &exam.ImageRef{Source: "data:image/png;base64,cG5n"}

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"answers":[
		{"id":1,"correctAnswerIndex":2,"explanation":"because"},
		{"id":4,"correctAnswerIndex":9,"explanation":"out of range"},
		{"id":99,"correctAnswerIndex":1,"explanation":"unknown id"}
	]}`)})
	gen := New(mock, DefaultConfig())

	entries, err := gen.RegenerateAnswerKey(context.Background(), []*exam.Question{q1, q2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0] != (exam.AnswerKeyEntry{ID: 1, Correct: 2, Explanation: "because"}) {
		t.Fatalf("entries = %+v", entries)
	}
	msg := mock.Calls[0].Messages[0]
	if len(msg.Images) != 1 || !strings.Contains(msg.Content, "belong to: question 4") {
		t.Errorf("question image not attached: %d images\n%s", len(msg.Images), msg.Content)
	}
}

func TestModifyDiagram(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"svgCode":"Here you go: <svg viewBox=\"0 0 10 10\"><circle r=\"4\"/></svg>"}`)},
		llm.MockResponse{Content: json.RawMessage(`{"svgCode":"<svg><g></svg>"}`)},
	)
	gen := New(mock, DefaultConfig())

	svg, err := gen.ModifyDiagram(context.Background(), "<svg></svg>", "add a circle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svg != `<svg viewBox="0 0 10 10"><circle r="4"/></svg>` {
		t.Errorf("svg = %q", svg)
	}

	_, err = gen.ModifyDiagram(context.Background(), "<svg></svg>", "break it")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for malformed SVG, got %v", err)
	}

	if _, err := gen.ModifyDiagram(context.Background(), "", "x"); err == nil {
		t.Error("expected error for an empty diagram")
	}
}

func TestDescribeVisual(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"description":"  Two resistors in series.  "}`)},
		llm.MockResponse{Content: json.RawMessage(`{"description":"A lens."}`)},
	)
	gen := New(mock, DefaultConfig())

	desc, err := gen.DescribeVisual(context.Background(), "<svg><rect/></svg>", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc != "Two resistors in series." {
		t.Errorf("desc = %q", desc)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "<svg><rect/></svg>") {
		t.Error("svg markup not sent")
	}

	if _, err := gen.DescribeVisual(context.Background(), "data:image/png;base64,cG5n", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.Calls[1].Messages[0].Images) != 1 {
		t.Error("image not attached")
	}

	if _, err := gen.DescribeVisual(context.Background(), "notes.txt", false); err == nil {
		t.Error("expected error for a missing image file")
	}
}
