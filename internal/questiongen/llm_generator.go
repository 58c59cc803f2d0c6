package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/llm"
	"github.com/sameane/physexam/internal/logger"
)

// Purpose labels recorded with every LLM request event.
const (
	PurposeGenerateExam  = llm.PurposeGenerateExam
	PurposeVariant       = llm.PurposeVariant
	PurposeEditQuestion  = llm.PurposeEditQuestion
	PurposeExtractImage  = llm.PurposeExtractImage
	PurposeAnswerKey     = llm.PurposeAnswerKey
	PurposeModifyDiagram = llm.PurposeModifyDiagram
	PurposeDescribe      = llm.PurposeDescribe
)

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// questionOutput is the raw LLM question before validation.
type questionOutput struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
	SVGCode            string   `json:"svgCode"`
	VisualDescription  string   `json:"visualDescription"`
}

type examOutput struct {
	Questions []questionOutput `json:"questions"`
}

type answerKeyOutput struct {
	Answers []struct {
		ID                 int    `json:"id"`
		CorrectAnswerIndex int    `json:"correctAnswerIndex"`
		Explanation        string `json:"explanation"`
	} `json:"answers"`
}

func (g *LLMGenerator) GenerateExam(ctx context.Context, req Request) ([]*exam.Question, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	msg := llm.Message{Role: llm.RoleUser, Content: buildExamMessage(req)}
	if req.ReferenceImage != nil {
		msg.Images = []llm.Image{*req.ReferenceImage}
	}
	return g.generateQuestions(ctx, PurposeGenerateExam, msg, req.Count)
}

func (g *LLMGenerator) GenerateVariant(ctx context.Context, doc *exam.Document, instructions string) ([]*exam.Question, error) {
	n := len(doc.Questions())
	if n == 0 {
		return nil, &RequestError{Field: "document", Reason: "has no questions"}
	}
	msg := llm.Message{Role: llm.RoleUser, Content: buildVariantMessage(doc, instructions)}
	return g.generateQuestions(ctx, PurposeVariant, msg, n)
}

func (g *LLMGenerator) generateQuestions(ctx context.Context, purpose string, msg llm.Message, want int) ([]*exam.Question, error) {
	var out examOutput
	err := g.call(ctx, purpose, llm.Request{
		System:      systemPrompt(g.config),
		Messages:    []llm.Message{msg},
		Schema:      ExamSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.GenerateTemperature,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Questions) == 0 {
		return nil, ErrEmptyResponse
	}
	if len(out.Questions) != want {
		logger.L().Warn("question count differs from request",
			"purpose", purpose, "want", want, "got", len(out.Questions))
	}
	if len(out.Questions) > want {
		out.Questions = out.Questions[:want]
	}

	qs := make([]*exam.Question, 0, len(out.Questions))
	for i, raw := range out.Questions {
		q := raw.toQuestion()
		if err := runValidators(g.config.Validators, q, i); err != nil {
			return nil, err
		}
		q.Validate()
		qs = append(qs, q)
	}
	return qs, nil
}

func (g *LLMGenerator) EditQuestion(ctx context.Context, q *exam.Question, req EditRequest) (*exam.Question, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	msg := llm.Message{Role: llm.RoleUser, Content: buildEditMessage(q, req)}
	if req.Image != nil {
		msg.Images = []llm.Image{*req.Image}
	}

	edited, err := g.singleQuestion(ctx, PurposeEditQuestion, msg, g.config.EditTemperature)
	if err != nil {
		return nil, err
	}
	edited.ID = q.ID
	edited.Image = q.Image
	if edited.Diagram == "" && !req.WithDiagram {
		edited.Diagram = q.Diagram
	}
	if edited.VisualDescription == "" && edited.HasVisual() {
		edited.VisualDescription = q.VisualDescription
	}
	return edited, nil
}

func (g *LLMGenerator) ExtractFromImage(ctx context.Context, img llm.Image) (*exam.Question, error) {
	msg := llm.Message{Role: llm.RoleUser, Content: extractPrompt, Images: []llm.Image{img}}
	return g.singleQuestion(ctx, PurposeExtractImage, msg, g.config.ExtractTemperature)
}

func (g *LLMGenerator) singleQuestion(ctx context.Context, purpose string, msg llm.Message, temp float64) (*exam.Question, error) {
	var raw questionOutput
	err := g.call(ctx, purpose, llm.Request{
		System:      systemPrompt(g.config),
		Messages:    []llm.Message{msg},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.singleTokens(),
		Temperature: temp,
	}, &raw)
	if err != nil {
		return nil, err
	}
	q := raw.toQuestion()
	if err := runValidators(g.config.Validators, q, -1); err != nil {
		return nil, err
	}
	q.Validate()
	return q, nil
}

func (g *LLMGenerator) RegenerateAnswerKey(ctx context.Context, questions []*exam.Question) ([]exam.AnswerKeyEntry, error) {
	if len(questions) == 0 {
		return nil, &RequestError{Field: "questions", Reason: "is empty"}
	}

	var (
		images   []llm.Image
		imageIDs []int
	)
	for _, q := range questions {
		if q.Image == nil || q.Image.Source == "" {
			continue
		}
		img, err := llm.LoadImage(q.Image.Source)
		if err != nil {
			logger.L().Warn("skipping question image", "id", q.ID, "error", err)
			continue
		}
		images = append(images, img)
		imageIDs = append(imageIDs, q.ID)
	}

	var out answerKeyOutput
	err := g.call(ctx, PurposeAnswerKey, llm.Request{
		System: systemPrompt(g.config),
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: buildAnswerKeyMessage(questions, imageIDs),
			Images:  images,
		}},
		Schema:      AnswerKeySchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.AnswerTemperature,
	}, &out)
	if err != nil {
		return nil, err
	}

	known := make(map[int]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	entries := make([]exam.AnswerKeyEntry, 0, len(out.Answers))
	for _, a := range out.Answers {
		if !known[a.ID] || a.CorrectAnswerIndex < 0 || a.CorrectAnswerIndex >= exam.OptionCount {
			continue
		}
		entries = append(entries, exam.AnswerKeyEntry{
			ID:          a.ID,
			Correct:     a.CorrectAnswerIndex,
			Explanation: a.Explanation,
		})
	}
	if len(entries) == 0 {
		return nil, ErrEmptyResponse
	}
	return entries, nil
}

func (g *LLMGenerator) ModifyDiagram(ctx context.Context, svg, instruction string) (string, error) {
	if strings.TrimSpace(svg) == "" {
		return "", &RequestError{Field: "diagram", Reason: "is empty"}
	}
	if strings.TrimSpace(instruction) == "" {
		return "", &RequestError{Field: "instruction", Reason: "is required"}
	}

	var out struct {
		SVGCode string `json:"svgCode"`
	}
	err := g.call(ctx, PurposeModifyDiagram, llm.Request{
		System:      systemPrompt(g.config),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildDiagramMessage(svg, instruction)}},
		Schema:      DiagramSchema,
		MaxTokens:   g.config.singleTokens(),
		Temperature: g.config.DiagramTemperature,
	}, &out)
	if err != nil {
		return "", err
	}
	markup := cleanSVG(out.SVGCode)
	if markup == "" {
		return "", ErrEmptyResponse
	}
	if err := checkSVG(markup); err != nil {
		return "", &ValidationError{Validator: "diagram", Index: -1, Message: err.Error()}
	}
	return markup, nil
}

func (g *LLMGenerator) DescribeVisual(ctx context.Context, content string, isSVG bool) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", &RequestError{Field: "content", Reason: "is empty"}
	}
	msg := llm.Message{Role: llm.RoleUser, Content: describePrompt}
	if isSVG {
		msg.Content += "\n\nSVG markup:\n" + content
	} else {
		img, err := llm.LoadImage(content)
		if err != nil {
			return "", err
		}
		msg.Images = []llm.Image{img}
	}

	var out struct {
		Description string `json:"description"`
	}
	err := g.call(ctx, PurposeDescribe, llm.Request{
		System:      systemPrompt(g.config),
		Messages:    []llm.Message{msg},
		Schema:      DescriptionSchema,
		MaxTokens:   1024,
		Temperature: g.config.DescribeTemperature,
	}, &out)
	if err != nil {
		return "", err
	}
	desc := strings.TrimSpace(out.Description)
	if desc == "" {
		return "", ErrEmptyResponse
	}
	return desc, nil
}

// call sends req tagged with purpose and decodes the response into out.
func (g *LLMGenerator) call(ctx context.Context, purpose string, req llm.Request, out any) error {
	ctx = llm.WithPurpose(ctx, purpose)
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", purpose, err)
	}
	if len(resp.Content) == 0 {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("%s: parse response: %w", purpose, err)
	}
	return nil
}

func (o questionOutput) toQuestion() *exam.Question {
	q := &exam.Question{
		Prompt:            strings.TrimSpace(o.Text),
		Correct:           o.CorrectAnswerIndex,
		Explanation:       strings.TrimSpace(o.Explanation),
		VisualDescription: strings.TrimSpace(o.VisualDescription),
	}
	for i := 0; i < exam.OptionCount && i < len(o.Options); i++ {
		q.Options[i] = strings.TrimSpace(o.Options[i])
	}
	if svg := cleanSVG(o.SVGCode); svg != "" {
		q.Diagram = svg
	} else {
		q.VisualDescription = ""
	}
	return q
}
