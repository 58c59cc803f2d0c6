// Package questiongen turns lesson descriptions, photos and existing
// questions into exam content using an LLM provider.
package questiongen

import (
	"context"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/llm"
)

// Generator produces and revises exam questions.
// Every returned question has passed the configured validators.
type Generator interface {
	// GenerateExam produces req.Count new questions. Ids are left zero;
	// the document assigns them.
	GenerateExam(ctx context.Context, req Request) ([]*exam.Question, error)

	// GenerateVariant produces a parallel form of doc: same topic and
	// question count, different numbers and wording.
	GenerateVariant(ctx context.Context, doc *exam.Document, instructions string) ([]*exam.Question, error)

	// EditQuestion rewrites q following req. The result keeps q's id.
	EditQuestion(ctx context.Context, q *exam.Question, req EditRequest) (*exam.Question, error)

	// ExtractFromImage reads a photographed question.
	ExtractFromImage(ctx context.Context, img llm.Image) (*exam.Question, error)

	// RegenerateAnswerKey solves questions and returns one entry per
	// question id the model answered.
	RegenerateAnswerKey(ctx context.Context, questions []*exam.Question) ([]exam.AnswerKeyEntry, error)

	// ModifyDiagram returns new SVG markup for svg changed per instruction.
	ModifyDiagram(ctx context.Context, svg, instruction string) (string, error)

	// DescribeVisual returns a short description of a diagram. content is
	// SVG markup when isSVG is set, otherwise an image path or data URL.
	DescribeVisual(ctx context.Context, content string, isSVG bool) (string, error)
}

// Request describes a new exam.
type Request struct {
	// Topic is the lesson title, e.g. "Newton's second law".
	Topic string

	// Count is the number of questions, 1..MaxQuestions.
	Count int

	// Difficulty runs from 1 (recall) to 10 (olympiad).
	Difficulty int

	// Instructions is optional free text appended to the prompt.
	Instructions string

	// ReferenceImage is an optional page or figure to base questions on.
	ReferenceImage *llm.Image
}

// EditRequest describes an AI edit of one question.
type EditRequest struct {
	Instructions string

	// Image, when set, is sent with the prompt. An image with empty
	// instructions asks for a new question built from the image.
	Image *llm.Image

	// Difficulty is optional; 0 keeps the current level.
	Difficulty int

	// WithDiagram asks for SVG markup and its description.
	WithDiagram bool
}

const (
	MaxQuestions  = 50
	MinDifficulty = 1
	MaxDifficulty = 10
)

// Validate checks the request before any provider call.
func (r Request) Validate() error {
	if r.Topic == "" {
		return &RequestError{Field: "topic", Reason: "is required"}
	}
	if r.Count < 1 || r.Count > MaxQuestions {
		return &RequestError{Field: "count", Reason: "must be between 1 and 50"}
	}
	if r.Difficulty < MinDifficulty || r.Difficulty > MaxDifficulty {
		return &RequestError{Field: "difficulty", Reason: "must be between 1 and 10"}
	}
	return nil
}

// Validate checks the edit request.
func (r EditRequest) Validate() error {
	if r.Instructions == "" && r.Image == nil && !r.WithDiagram && r.Difficulty == 0 {
		return &RequestError{Field: "instructions", Reason: "nothing to change"}
	}
	if r.Difficulty != 0 && (r.Difficulty < MinDifficulty || r.Difficulty > MaxDifficulty) {
		return &RequestError{Field: "difficulty", Reason: "must be between 1 and 10"}
	}
	return nil
}
