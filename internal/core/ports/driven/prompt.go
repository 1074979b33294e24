package driven

// Prompt names used by the answer synthesizers.
const (
	// PromptAnswerSystem is the system instruction for chat-style models.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser formats the user turn. Placeholders: context, question.
	PromptAnswerUser = "answer_user"

	// PromptAnswerCompletion is the single prompt for completion-style models.
	// Placeholders: context, question.
	PromptAnswerCompletion = "answer_completion"
)

// PromptStore provides customisable prompt templates.
type PromptStore interface {
	// Load returns the template for name.
	Load(name string) (string, error)
}
