package ai

import "strings"

// buildSystemPrompt frames the model as the Echo assistant and pins its
// answers to the grounding material.
func buildSystemPrompt(grounding string) string {
	var builder strings.Builder
	builder.WriteString("You are Echo, the assistant embedded in a personal portfolio site. ")
	builder.WriteString("Answer concisely, in markdown, using only the reference material below. ")
	builder.WriteString("If the material does not cover the question, say so instead of inventing details.")
	if grounding != "" {
		builder.WriteString("\n\nReference material:\n")
		builder.WriteString(grounding)
	}
	return builder.String()
}
