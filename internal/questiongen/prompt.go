package questiongen

import (
	"fmt"
	"strings"

	"github.com/sameane/physexam/internal/exam"
)

const systemPromptTemplate = `You are an expert physics teacher and curriculum developer writing exam papers for secondary school students.

Rules:
- Write every question, option and explanation in %s.
- Every question is multiple choice with exactly 4 options and exactly one correct option.
- Write all equations, symbols and numbers with units in LaTeX between \( and \). Never use $ delimiters.
- Distractors should reflect common misconceptions, not random values.
- Keep explanations short: the key law and the calculation.
- When a diagram is requested, return minimal, valid SVG markup (no scripts, no external references, no markdown fences) and a concise description of it. Otherwise leave svgCode and visualDescription empty.`

func systemPrompt(cfg Config) string {
	lang := cfg.Language
	if lang == "" {
		lang = "English"
	}
	return fmt.Sprintf(systemPromptTemplate, lang)
}

func buildExamMessage(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create physics questions for the lesson: %q.\n\n", req.Topic)
	fmt.Fprintf(&b, "Number of questions: %d\n", req.Count)
	fmt.Fprintf(&b, "Difficulty: %d out of 10\n", req.Difficulty)
	fmt.Fprintf(&b, "Additional instructions: %s\n", orNone(req.Instructions))
	if req.ReferenceImage != nil {
		b.WriteString("\nBase the questions on the attached reference image.\n")
	}
	return b.String()
}

func buildVariantMessage(doc *exam.Document, instructions string) string {
	qs := doc.Questions()
	var b strings.Builder
	fmt.Fprintf(&b, "Write a parallel form of the exam %q.\n", doc.Title)
	fmt.Fprintf(&b, "Produce exactly %d questions, one for each original question, in the same order.\n", len(qs))
	b.WriteString("Test the same concept at the same difficulty, but change the numbers, the context and the order of the options.\n")
	fmt.Fprintf(&b, "Additional instructions: %s\n\n", orNone(instructions))
	b.WriteString("Original questions:\n")
	writeQuestions(&b, qs)
	return b.String()
}

func buildEditMessage(q *exam.Question, req EditRequest) string {
	instructions := req.Instructions
	if req.Image != nil && strings.TrimSpace(instructions) == "" {
		instructions = "Analyse the attached image and write an accurate physics question based on it."
	}

	var b strings.Builder
	b.WriteString("Modify or replace the following question.\n\n")
	fmt.Fprintf(&b, "Current question: %s\n", q.Prompt)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%c) %s\n", 'A'+i, opt)
	}
	fmt.Fprintf(&b, "\nInstructions: %s\n", orNone(instructions))
	if req.Difficulty > 0 {
		fmt.Fprintf(&b, "Required difficulty: %d out of 10.\n", req.Difficulty)
	}
	if req.WithDiagram {
		b.WriteString("Important: draw a diagram of the problem as SVG in svgCode and describe it precisely in visualDescription.\n")
	}
	return b.String()
}

const extractPrompt = `Read the physics question in the attached image and return it as structured data:
1. The question text.
2. The four options (there must be exactly 4).
3. The index of the correct option (0-3).
4. A precise worked explanation.

Use LaTeX for every equation and scientific quantity.`

// buildAnswerKeyMessage lists the questions to solve. withImages names the
// ids whose images are attached, in attachment order.
func buildAnswerKeyMessage(qs []*exam.Question, withImages []int) string {
	var b strings.Builder
	b.WriteString("Solve each of the following questions. For each, give the index (0-3) of the correct option and a precise explanation using LaTeX.\n\n")
	for _, q := range qs {
		fmt.Fprintf(&b, "Question %d: %s\n", q.ID, q.Prompt)
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "  %c) %s\n", 'A'+i, opt)
		}
		if q.VisualDescription != "" {
			fmt.Fprintf(&b, "  Figure: %s\n", q.VisualDescription)
		}
		b.WriteString("\n")
	}
	if len(withImages) > 0 {
		ids := make([]string, len(withImages))
		for i, id := range withImages {
			ids[i] = fmt.Sprintf("question %d", id)
		}
		fmt.Fprintf(&b, "Attached images, in order, belong to: %s.\n", strings.Join(ids, ", "))
	}
	return b.String()
}

func buildDiagramMessage(svg, instruction string) string {
	var b strings.Builder
	b.WriteString("You are given the SVG diagram of a physics problem.\n")
	fmt.Fprintf(&b, "Change it as follows: %q.\n\n", instruction)
	b.WriteString("Rules:\n")
	b.WriteString("1. Keep the markup clean and simple.\n")
	b.WriteString("2. The result must be valid SVG that renders in a browser.\n")
	b.WriteString("3. Do not change the viewBox substantially unless asked to.\n")
	b.WriteString("4. Return only the new SVG.\n\n")
	b.WriteString("Current SVG:\n")
	b.WriteString(svg)
	return b.String()
}

const describePrompt = `Analyse this figure from a physics question and give a short, scientific description of it.

Rules:
1. Name only the essential physical components and their values (e.g. a 5 ohm resistor, a 12 V battery).
2. State the important geometric relations briefly (e.g. connected in series, a 30 degree angle).
3. No filler such as "in the image we see". Start with the description.`

func writeQuestions(b *strings.Builder, qs []*exam.Question) {
	for i, q := range qs {
		fmt.Fprintf(b, "%d. %s\n", i+1, q.Prompt)
		for j, opt := range q.Options {
			fmt.Fprintf(b, "   %c) %s\n", 'A'+j, opt)
		}
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
