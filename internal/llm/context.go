package llm

import "context"

type purposeKey struct{}

// Request purposes, one per question generator operation. WithLogging
// stores them with each event so `physexam llm` can break usage down.
const (
	PurposeGenerateExam  = "generate-exam"
	PurposeVariant       = "generate-variant"
	PurposeEditQuestion  = "edit-question"
	PurposeExtractImage  = "extract-image"
	PurposeAnswerKey     = "answer-key"
	PurposeModifyDiagram = "modify-diagram"
	PurposeDescribe      = "describe-visual"

	// PurposeUnlabelled is recorded for calls made without WithPurpose.
	PurposeUnlabelled = "unlabelled"
)

// WithPurpose tags ctx with the operation a request serves. An empty
// purpose leaves ctx as it is.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	if purpose == "" {
		return ctx
	}
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the purpose set by WithPurpose, or PurposeUnlabelled.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return PurposeUnlabelled
}
