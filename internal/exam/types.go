package exam

// Kind identifies the variant of an Item. The values double as the "type"
// tag in persisted files.
type Kind string

const (
	// KindQuestion is a four-option multiple-choice question.
	KindQuestion Kind = "multiple_choice"

	// KindText is a free-text block (section heading, instructions).
	KindText Kind = "text_only"
)

// OptionCount is the number of options every question carries.
const OptionCount = 4

// Item is one printable entry of an exam, in print order.
// The set of variants is closed: *Question and *TextBlock.
type Item interface {
	// ItemID returns the document-unique id of the item.
	ItemID() int

	// Kind reports which variant this is.
	Kind() Kind

	clone() Item
	withID(id int) Item
}

// Question is a multiple-choice question with exactly four options.
type Question struct {
	ID int

	// Prompt is the question text. Math is LaTeX between \( and \).
	Prompt string

	Options [OptionCount]string

	// Correct is the index (0..3) of the correct option.
	Correct int

	// Explanation is the worked solution shown in the answer key.
	Explanation string

	// Image is an optional picture attached to the question.
	Image *ImageRef

	// Diagram is optional SVG markup drawn under the prompt.
	Diagram string

	// VisualDescription is a short description of the image or diagram.
	VisualDescription string

	// ValidationError holds the latest LaTeX validation message, if any.
	// It is derived state and never persisted.
	ValidationError string
}

// ImageRef points at an image by file path or data: URL.
// Zero Width/Height mean "natural size".
type ImageRef struct {
	Source string
	Width  int
	Height int
}

// TextBlock is a free-text item with no options or answer.
type TextBlock struct {
	ID      int
	Content string
}

func (q *Question) ItemID() int { return q.ID }
func (q *Question) Kind() Kind  { return KindQuestion }

func (q *Question) clone() Item {
	c := *q
	if q.Image != nil {
		img := *q.Image
		c.Image = &img
	}
	return &c
}

func (q *Question) withID(id int) Item {
	c := q.clone().(*Question)
	c.ID = id
	return c
}

// CorrectOption returns the text of the correct option, or "" when the
// index is out of range.
func (q *Question) CorrectOption() string {
	if q.Correct < 0 || q.Correct >= OptionCount {
		return ""
	}
	return q.Options[q.Correct]
}

// HasVisual reports whether the question carries an image or a diagram.
func (q *Question) HasVisual() bool {
	return q.Image != nil || q.Diagram != ""
}

func (t *TextBlock) ItemID() int { return t.ID }
func (t *TextBlock) Kind() Kind  { return KindText }

func (t *TextBlock) clone() Item {
	c := *t
	return &c
}

func (t *TextBlock) withID(id int) Item {
	return &TextBlock{ID: id, Content: t.Content}
}

// Document is the versioned exam artifact.
type Document struct {
	Title string

	// Items are in print order.
	Items []Item

	// Watermark is an image source (path or data: URL); empty means none.
	Watermark string

	WatermarkSettings WatermarkSettings
	Design            DesignSettings

	// AnswerKeyStale is set by edits that may invalidate correct answers or
	// explanations, and cleared by generation and answer-key regeneration.
	AnswerKeyStale bool
}

// AnswerKeyEntry is one row of a regenerated answer key.
type AnswerKeyEntry struct {
	ID          int
	Correct     int
	Explanation string
}
