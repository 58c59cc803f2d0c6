package editor

import (
	"fmt"
	"strings"

	"github.com/sameane/physexam/internal/exam"
)

// VariantSuffix is appended to the title of a generated variant.
const VariantSuffix = " (variant)"

// AddQuestions appends n blank questions.
func (s *Session) AddQuestions(n int) (*exam.Document, error) {
	if n < 1 {
		return nil, fmt.Errorf("question count must be positive, got %d", n)
	}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		return d.AddBlankQuestions(n), nil
	})
}

// AddText appends a text block.
func (s *Session) AddText(content string) (*exam.Document, error) {
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		return d.AddTextBlock(content), nil
	})
}

// UpdateQuestion applies fn to a copy of question id.
func (s *Session) UpdateQuestion(id int, fn func(q *exam.Question)) (*exam.Document, error) {
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		return d.UpdateQuestion(id, fn)
	})
}

// UpdateText replaces the content of text block id.
func (s *Session) UpdateText(id int, content string) (*exam.Document, error) {
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		it, ok := d.Find(id)
		if !ok {
			return nil, fmt.Errorf("item %d: %w", id, exam.ErrItemNotFound)
		}
		if _, ok := it.(*exam.TextBlock); !ok {
			return nil, fmt.Errorf("item %d: %w", id, ErrNotText)
		}
		return d.ReplaceItem(id, &exam.TextBlock{Content: content})
	})
}

func (s *Session) Delete(id int) (*exam.Document, error) {
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		return d.DeleteItem(id)
	})
}

// Duplicate copies id directly after itself and returns the copy's id.
func (s *Session) Duplicate(id int) (*exam.Document, int, error) {
	var newID int
	doc, err := s.apply(func(d *exam.Document) (*exam.Document, error) {
		next, n, err := d.DuplicateItem(id)
		newID = n
		return next, err
	})
	return doc, newID, err
}

// Move reorders by position.
func (s *Session) Move(from, to int) (*exam.Document, error) {
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		return d.MoveItem(from, to)
	})
}

func (s *Session) SetTitle(title string) (*exam.Document, error) {
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		return d.WithTitle(strings.TrimSpace(title)), nil
	})
}

// SetWatermark sets the watermark image source (path or data: URL).
func (s *Session) SetWatermark(src string) (*exam.Document, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("watermark source is empty")
	}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		c := d.Clone()
		c.Watermark = src
		return c, nil
	})
}

func (s *Session) ClearWatermark() (*exam.Document, error) {
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		c := d.Clone()
		c.Watermark = ""
		return c, nil
	})
}

func (s *Session) SetWatermarkSettings(ws exam.WatermarkSettings) (*exam.Document, error) {
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		c := d.Clone()
		c.WatermarkSettings = ws
		return c, nil
	})
}

func (s *Session) SetDesign(ds exam.DesignSettings) (*exam.Document, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return s.apply(func(d *exam.Document) (*exam.Document, error) {
		c := d.Clone()
		c.Design = ds
		return c, nil
	})
}

// ReplaceDocument commits doc wholesale, as the raw JSON editor does.
func (s *Session) ReplaceDocument(doc *exam.Document) (*exam.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("replace with nil document")
	}
	return s.apply(func(*exam.Document) (*exam.Document, error) {
		return doc.Clone(), nil
	})
}

// Load reads an exam file and commits it as the new current document.
// The history is kept, so loading can be undone.
func (s *Session) Load(path string) (*exam.Document, error) {
	doc, err := exam.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return s.ReplaceDocument(doc)
}

// SaveFile writes the current document to path.
func (s *Session) SaveFile(path string) error {
	return exam.SaveFile(path, s.Current())
}
