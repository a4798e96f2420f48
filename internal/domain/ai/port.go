package ai

import "context"

// Completer is the capability port for the external text-completion service.
// systemPrompt fixes the assistant's role; userPrompt carries the scan
// context payload plus the user's question.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
