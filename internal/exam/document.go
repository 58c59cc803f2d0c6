package exam

// New returns an empty document with default styling.
func New(title string) *Document {
	return &Document{
		Title:             title,
		WatermarkSettings: DefaultWatermarkSettings(),
		Design:            DefaultDesignSettings(),
	}
}

// NewQuestion builds a validated question. Correct is clamped into range.
func NewQuestion(prompt string, options [OptionCount]string, correct int, explanation string) *Question {
	q := &Question{
		Prompt:      prompt,
		Options:     options,
		Correct:     clampCorrect(correct),
		Explanation: explanation,
	}
	q.Validate()
	return q
}

func clampCorrect(i int) int {
	if i < 0 || i >= OptionCount {
		return 0
	}
	return i
}

// NextID returns max(ids)+1, or 1 for an empty document.
func (d *Document) NextID() int {
	hi := 0
	for _, it := range d.Items {
		hi = max(hi, it.ItemID())
	}
	return hi + 1
}

// Clone returns a deep copy. Snapshots handed to history are clones, so
// later edits never reach them.
func (d *Document) Clone() *Document {
	c := *d
	c.Items = make([]Item, len(d.Items))
	for i, it := range d.Items {
		c.Items[i] = it.clone()
	}
	return &c
}

// Find returns the item with id.
func (d *Document) Find(id int) (Item, bool) {
	i := d.IndexOf(id)
	if i < 0 {
		return nil, false
	}
	return d.Items[i], true
}

// FindQuestion returns the question with id, or an error when the id is
// unknown or names a text block.
func (d *Document) FindQuestion(id int) (*Question, error) {
	it, ok := d.Find(id)
	if !ok {
		return nil, notFound(id)
	}
	q, ok := it.(*Question)
	if !ok {
		return nil, ErrNotQuestion
	}
	return q, nil
}

// IndexOf returns the position of id, or -1.
func (d *Document) IndexOf(id int) int {
	for i, it := range d.Items {
		if it.ItemID() == id {
			return i
		}
	}
	return -1
}

// Questions returns the question items in print order.
func (d *Document) Questions() []*Question {
	var out []*Question
	for _, it := range d.Items {
		if q, ok := it.(*Question); ok {
			out = append(out, q)
		}
	}
	return out
}

// QuestionNumber returns the 1-based number printed next to question id.
// Text blocks are not numbered and yield 0.
func (d *Document) QuestionNumber(id int) int {
	n := 0
	for _, it := range d.Items {
		if _, ok := it.(*Question); !ok {
			continue
		}
		n++
		if it.ItemID() == id {
			return n
		}
	}
	return 0
}

// IDs returns the item ids in print order.
func (d *Document) IDs() []int {
	ids := make([]int, len(d.Items))
	for i, it := range d.Items {
		ids[i] = it.ItemID()
	}
	return ids
}

// HasInvalid reports whether any question failed LaTeX validation.
func (d *Document) HasInvalid() bool {
	for _, q := range d.Questions() {
		if !q.Valid() {
			return true
		}
	}
	return false
}
