package exam

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// FileExt is the extension of saved exam files.
const FileExt = ".phq"

type fileItem struct {
	ID                int      `json:"id"`
	Type              Kind     `json:"type"`
	Text              string   `json:"text"`
	Options           []string `json:"options"`
	CorrectAnswer     int      `json:"correctAnswerIndex"`
	Explanation       string   `json:"explanation"`
	ImageURL          string   `json:"imageUrl,omitempty"`
	ImageWidth        int      `json:"imageWidth,omitempty"`
	ImageHeight       int      `json:"imageHeight,omitempty"`
	SVGCode           string   `json:"svgCode,omitempty"`
	VisualDescription string   `json:"visualDescription,omitempty"`
}

type fileDoc struct {
	LessonTitle       string            `json:"lessonTitle"`
	Questions         []fileItem        `json:"questions"`
	Watermark         string            `json:"watermark,omitempty"`
	WatermarkSettings WatermarkSettings `json:"watermarkSettings"`
	DesignSettings    DesignSettings    `json:"designSettings"`
	AnswerKeyStale    bool              `json:"answerKeyStale,omitempty"`
}

// Save writes doc as indented JSON.
func Save(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(toFile(doc)); err != nil {
		return fmt.Errorf("encode exam: %w", err)
	}
	return nil
}

// Marshal returns the persisted form of doc.
func Marshal(doc *Document) ([]byte, error) {
	var b bytes.Buffer
	if err := Save(&b, doc); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func toFile(doc *Document) fileDoc {
	f := fileDoc{
		LessonTitle:       doc.Title,
		Questions:         make([]fileItem, 0, len(doc.Items)),
		Watermark:         doc.Watermark,
		WatermarkSettings: doc.WatermarkSettings,
		DesignSettings:    doc.Design,
		AnswerKeyStale:    doc.AnswerKeyStale,
	}
	for _, it := range doc.Items {
		switch v := it.(type) {
		case *Question:
			fi := fileItem{
				ID:                v.ID,
				Type:              KindQuestion,
				Text:              v.Prompt,
				Options:           append([]string(nil), v.Options[:]...),
				CorrectAnswer:     v.Correct,
				Explanation:       v.Explanation,
				SVGCode:           v.Diagram,
				VisualDescription: v.VisualDescription,
			}
			if v.Image != nil {
				fi.ImageURL = v.Image.Source
				fi.ImageWidth = v.Image.Width
				fi.ImageHeight = v.Image.Height
			}
			f.Questions = append(f.Questions, fi)
		case *TextBlock:
			f.Questions = append(f.Questions, fileItem{
				ID:            v.ID,
				Type:          KindText,
				Text:          v.Content,
				Options:       []string{},
				CorrectAnswer: -1,
			})
		}
	}
	return f
}

// Load parses an exam file. Unknown fields are ignored; a missing type
// means multiple choice; missing options are padded with ""; an
// out-of-range answer index becomes 0; missing or duplicate ids are
// reassigned after the highest id. Malformed input yields a *ParseError
// and no document.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Reason: "read", Err: err}
	}
	return Unmarshal(data)
}

// Unmarshal is Load over a byte slice.
func Unmarshal(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Reason: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Reason: "top level must be an object"}
	}
	qs := root.Get("questions")
	if qs.Exists() && !qs.IsArray() {
		return nil, &ParseError{Reason: "questions must be an array"}
	}

	doc := New(root.Get("lessonTitle").String())
	doc.Watermark = root.Get("watermark").String()
	doc.AnswerKeyStale = root.Get("answerKeyStale").Bool()
	if ws := root.Get("watermarkSettings"); ws.IsObject() {
		if err := json.Unmarshal([]byte(ws.Raw), &doc.WatermarkSettings); err != nil {
			return nil, &ParseError{Reason: "watermarkSettings", Err: err}
		}
	}
	if ds := root.Get("designSettings"); ds.IsObject() {
		if err := json.Unmarshal([]byte(ds.Raw), &doc.Design); err != nil {
			return nil, &ParseError{Reason: "designSettings", Err: err}
		}
	}

	var items []Item
	var bad []int
	seen := map[int]bool{}
	for i, q := range qs.Array() {
		if !q.IsObject() {
			return nil, &ParseError{Reason: fmt.Sprintf("item %d is not an object", i)}
		}
		it := parseItem(q)
		id := it.ItemID()
		if id <= 0 || seen[id] {
			bad = append(bad, len(items))
		} else {
			seen[id] = true
		}
		items = append(items, it)
	}
	doc.Items = items
	for _, i := range bad {
		doc.Items[i] = doc.Items[i].withID(doc.NextID())
	}
	return doc, nil
}

func parseItem(q gjson.Result) Item {
	id := int(q.Get("id").Int())
	if Kind(q.Get("type").String()) == KindText {
		return &TextBlock{ID: id, Content: q.Get("text").String()}
	}
	qq := &Question{
		ID:                id,
		Prompt:            q.Get("text").String(),
		Explanation:       q.Get("explanation").String(),
		Diagram:           q.Get("svgCode").String(),
		VisualDescription: q.Get("visualDescription").String(),
		Correct:           clampCorrect(int(q.Get("correctAnswerIndex").Int())),
	}
	for i, opt := range q.Get("options").Array() {
		if i >= OptionCount {
			break
		}
		qq.Options[i] = opt.String()
	}
	if src := q.Get("imageUrl").String(); src != "" {
		qq.Image = &ImageRef{
			Source: src,
			Width:  int(q.Get("imageWidth").Int()),
			Height: int(q.Get("imageHeight").Int()),
		}
	}
	qq.Validate()
	return qq
}

// SaveFile writes doc to path, creating parent directories.
func SaveFile(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Save(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads an exam from path. Both .phq and .json are accepted.
func LoadFile(path string) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case FileExt, ".json":
	default:
		return nil, &ParseError{Path: path, Reason: "expected a " + FileExt + " or .json file"}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := Load(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}
