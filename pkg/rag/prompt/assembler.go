package prompt

import (
	"strings"

	"cortex-ai-be/internal/constant"
	"cortex-ai-be/pkg/llm"
	"cortex-ai-be/pkg/rag/summarizer"
)

// Assemble renders the generation request: preamble, context blocks, prior
// history in chronological order, then the new message. It is pure.
func Assemble(summaries []summarizer.ContextSummary, history []llm.Message, message string) string {
	var prompt strings.Builder

	prompt.WriteString(constant.PromptPreamble)
	prompt.WriteString("\n\n")

	writeContext(&prompt, summaries)
	writeHistory(&prompt, history)

	prompt.WriteString("USER QUESTION:\n")
	prompt.WriteString(message)

	return prompt.String()
}

func writeContext(prompt *strings.Builder, summaries []summarizer.ContextSummary) {
	prompt.WriteString("CONTEXT:\n")
	if len(summaries) == 0 {
		prompt.WriteString(constant.PromptNoContext)
	}
	for i, s := range summaries {
		if i > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString("### ")
		prompt.WriteString(s.Title)
		prompt.WriteString("\n")
		prompt.WriteString(s.Body)
	}
	prompt.WriteString("\n\n")
}

func writeHistory(prompt *strings.Builder, history []llm.Message) {
	prompt.WriteString("CONVERSATION HISTORY:\n")
	if len(history) == 0 {
		prompt.WriteString(constant.PromptNoHistory)
	}
	for i, m := range history {
		if i > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString(strings.ToUpper(m.Role))
		prompt.WriteString(": ")
		prompt.WriteString(m.Content)
	}
	prompt.WriteString("\n\n")
}
