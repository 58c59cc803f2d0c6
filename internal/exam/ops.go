package exam

import "fmt"

// The operations below never modify the receiver. Each returns a new
// document that shares no mutable state with the input.

// AppendItems appends copies of items with fresh ids in the order given.
// Questions are re-validated.
func (d *Document) AppendItems(items ...Item) *Document {
	c := d.Clone()
	next := c.NextID()
	for _, it := range items {
		n := it.withID(next)
		next++
		if q, ok := n.(*Question); ok {
			q.Correct = clampCorrect(q.Correct)
			q.Validate()
			c.AnswerKeyStale = true
		}
		c.Items = append(c.Items, n)
	}
	return c
}

// AddBlankQuestions appends n empty questions.
func (d *Document) AddBlankQuestions(n int) *Document {
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, &Question{})
	}
	return d.AppendItems(items...)
}

// AddTextBlock appends a text block.
func (d *Document) AddTextBlock(content string) *Document {
	return d.AppendItems(&TextBlock{Content: content})
}

// ReplaceItem swaps the item with id for item, keeping the id and position.
func (d *Document) ReplaceItem(id int, item Item) (*Document, error) {
	i := d.IndexOf(id)
	if i < 0 {
		return nil, notFound(id)
	}
	c := d.Clone()
	n := item.withID(id)
	if q, ok := n.(*Question); ok {
		q.Correct = clampCorrect(q.Correct)
		q.Validate()
		c.AnswerKeyStale = true
	}
	c.Items[i] = n
	return c, nil
}

// UpdateQuestion applies fn to a copy of question id and stores the result.
func (d *Document) UpdateQuestion(id int, fn func(q *Question)) (*Document, error) {
	q, err := d.FindQuestion(id)
	if err != nil {
		return nil, err
	}
	n := q.clone().(*Question)
	fn(n)
	return d.ReplaceItem(id, n)
}

// DeleteItem removes id. The remaining ids are not renumbered.
func (d *Document) DeleteItem(id int) (*Document, error) {
	i := d.IndexOf(id)
	if i < 0 {
		return nil, notFound(id)
	}
	c := d.Clone()
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.AnswerKeyStale = true
	return c, nil
}

// DuplicateItem inserts a copy of id directly after it, with NextID as the
// copy's id.
func (d *Document) DuplicateItem(id int) (*Document, int, error) {
	i := d.IndexOf(id)
	if i < 0 {
		return nil, 0, notFound(id)
	}
	c := d.Clone()
	newID := c.NextID()
	dup := c.Items[i].withID(newID)
	c.Items = append(c.Items[:i+1], append([]Item{dup}, c.Items[i+1:]...)...)
	c.AnswerKeyStale = true
	return c, newID, nil
}

// MoveItem removes the item at from and reinserts it at to. Ids are kept.
func (d *Document) MoveItem(from, to int) (*Document, error) {
	n := len(d.Items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("move %d -> %d with %d items: %w", from, to, n, ErrIndexOutOfRange)
	}
	c := d.Clone()
	if from == to {
		return c, nil
	}
	it := c.Items[from]
	c.Items = append(c.Items[:from], c.Items[from+1:]...)
	c.Items = append(c.Items[:to], append([]Item{it}, c.Items[to:]...)...)
	c.AnswerKeyStale = true
	return c, nil
}

// ApplyAnswerKey sets Correct and Explanation by id. Unknown ids and text
// blocks are skipped; out-of-range indexes are ignored.
func (d *Document) ApplyAnswerKey(entries []AnswerKeyEntry) *Document {
	c := d.Clone()
	for _, e := range entries {
		i := c.IndexOf(e.ID)
		if i < 0 {
			continue
		}
		q, ok := c.Items[i].(*Question)
		if !ok {
			continue
		}
		if e.Correct >= 0 && e.Correct < OptionCount {
			q.Correct = e.Correct
		}
		if e.Explanation != "" {
			q.Explanation = e.Explanation
		}
	}
	c.AnswerKeyStale = false
	return c
}

// WithTitle returns a copy with a new title.
func (d *Document) WithTitle(title string) *Document {
	c := d.Clone()
	c.Title = title
	return c
}
