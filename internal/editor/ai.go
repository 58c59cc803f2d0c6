package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/llm"
	"github.com/sameane/physexam/internal/questiongen"
)

// DefaultDifficulty is used when adding AI questions to an existing exam.
const DefaultDifficulty = 5

func (s *Session) generator() (questiongen.Generator, error) {
	if s.gen == nil {
		return nil, ErrNoGenerator
	}
	return s.gen, nil
}

// Generate replaces the document with a freshly generated exam titled
// req.Topic. Watermark and design carry over.
func (s *Session) Generate(ctx context.Context, req questiongen.Request) (*exam.Document, error) {
	gen, err := s.generator()
	if err != nil {
		return nil, err
	}
	qs, err := gen.GenerateExam(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		next := exam.New(req.Topic)
		next.Watermark = d.Watermark
		next.WatermarkSettings = d.WatermarkSettings
		next.Design = d.Design
		next = next.AppendItems(toItems(qs)...)
		next.AnswerKeyStale = false
		return next, nil
	})
}

// GenerateVariant rewrites every question as a parallel form. Text blocks
// stay in place and the title gains VariantSuffix.
func (s *Session) GenerateVariant(ctx context.Context, instructions string) (*exam.Document, error) {
	gen, err := s.generator()
	if err != nil {
		return nil, err
	}
	qs, err := gen.GenerateVariant(ctx, s.Current(), instructions)
	if err != nil {
		return nil, err
	}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		return variantOf(d, qs), nil
	})
}

// variantOf swaps d's questions for qs in order. Questions beyond len(qs)
// are dropped; surplus entries of qs are appended.
func variantOf(d *exam.Document, qs []*exam.Question) *exam.Document {
	next := d.Clone()
	next.Title = strings.TrimSuffix(d.Title, VariantSuffix) + VariantSuffix
	items := next.Items
	next.Items = make([]exam.Item, 0, len(items))

	k := 0
	for _, it := range items {
		if _, ok := it.(*exam.Question); !ok {
			next.Items = append(next.Items, it)
			continue
		}
		if k >= len(qs) {
			continue
		}
		q := *qs[k]
		q.ID = it.ItemID()
		next.Items = append(next.Items, &q)
		k++
	}
	if k < len(qs) {
		next = next.AppendItems(toItems(qs[k:])...)
	}
	next.AnswerKeyStale = false
	return next
}

// AddAIQuestions appends n generated questions on topic, or on the exam
// title when topic is empty.
func (s *Session) AddAIQuestions(ctx context.Context, n int, topic string) (*exam.Document, error) {
	gen, err := s.generator()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(topic) == "" {
		topic = s.Current().Title
	}
	qs, err := gen.GenerateExam(ctx, questiongen.Request{
		Topic:      topic,
		Count:      n,
		Difficulty: DefaultDifficulty,
	})
	if err != nil {
		return nil, err
	}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		next := d.AppendItems(toItems(qs)...)
		next.AnswerKeyStale = d.AnswerKeyStale
		return next, nil
	})
}

// AIEdit rewrites question id. An image attached to req replaces the
// question's image.
func (s *Session) AIEdit(ctx context.Context, id int, req questiongen.EditRequest) (*exam.Document, error) {
	gen, err := s.generator()
	if err != nil {
		return nil, err
	}
	q, err := s.Current().FindQuestion(id)
	if err != nil {
		return nil, err
	}
	edited, err := gen.EditQuestion(ctx, q, req)
	if err != nil {
		return nil, err
	}
	if req.Image != nil {
		edited.Image = &exam.ImageRef{Source: req.Image.DataURL()}
		if q.Image != nil {
			edited.Image.Width, edited.Image.Height = q.Image.Width, q.Image.Height
		}
	}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		return d.ReplaceItem(id, edited)
	})
}

// ExtractFromImage reads a photographed question from src (path or data:
// URL) into question id, which then shows the photo as its image. A
// non-positive id appends the question instead.
func (s *Session) ExtractFromImage(ctx context.Context, id int, src string) (*exam.Document, error) {
	gen, err := s.generator()
	if err != nil {
		return nil, err
	}
	if id > 0 {
		if _, err := s.Current().FindQuestion(id); err != nil {
			return nil, err
		}
	}
	img, err := llm.LoadImage(src)
	if err != nil {
		return nil, err
	}
	q, err := gen.ExtractFromImage(ctx, img)
	if err != nil {
		return nil, err
	}
	q.Image = &exam.ImageRef{Source: img.DataURL()}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		if id <= 0 {
			return d.AppendItems(q), nil
		}
		return d.ReplaceItem(id, q)
	})
}

// ModifyDiagram redraws the SVG of question id per instruction.
func (s *Session) ModifyDiagram(ctx context.Context, id int, instruction string) (*exam.Document, error) {
	gen, err := s.generator()
	if err != nil {
		return nil, err
	}
	q, err := s.Current().FindQuestion(id)
	if err != nil {
		return nil, err
	}
	if q.Diagram == "" {
		return nil, fmt.Errorf("question %d: %w", id, ErrNoDiagram)
	}
	svg, err := gen.ModifyDiagram(ctx, q.Diagram, instruction)
	if err != nil {
		return nil, err
	}
	return s.UpdateQuestion(id, func(q *exam.Question) { q.Diagram = svg })
}

// DescribeVisual stores a generated description of the diagram of question
// id, or of its image when it has no diagram.
func (s *Session) DescribeVisual(ctx context.Context, id int) (*exam.Document, error) {
	gen, err := s.generator()
	if err != nil {
		return nil, err
	}
	q, err := s.Current().FindQuestion(id)
	if err != nil {
		return nil, err
	}

	var desc string
	switch {
	case q.Diagram != "":
		desc, err = gen.DescribeVisual(ctx, q.Diagram, true)
	case q.Image != nil && q.Image.Source != "":
		desc, err = gen.DescribeVisual(ctx, q.Image.Source, false)
	default:
		return nil, fmt.Errorf("question %d: %w", id, ErrNoVisual)
	}
	if err != nil {
		return nil, err
	}
	return s.UpdateQuestion(id, func(q *exam.Question) { q.VisualDescription = desc })
}

// RegenerateAnswerKey re-solves every question and clears the stale flag.
func (s *Session) RegenerateAnswerKey(ctx context.Context) (*exam.Document, error) {
	gen, err := s.generator()
	if err != nil {
		return nil, err
	}
	entries, err := gen.RegenerateAnswerKey(ctx, s.Current().Questions())
	if err != nil {
		return nil, err
	}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		return d.ApplyAnswerKey(entries), nil
	})
}

func toItems(qs []*exam.Question) []exam.Item {
	items := make([]exam.Item, len(qs))
	for i, q := range qs {
		items[i] = q
	}
	return items
}
