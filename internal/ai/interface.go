package ai

import (
	"context"
)

// Oracle is the contract for the text-completion service behind the pipeline.
// Implementations take an instruction prompt plus a JSON-serializable input
// payload and return the model's raw text. One call per invocation, no retry;
// the returned text is untrusted and must go through ExtractJSON before use.
type Oracle interface {
	Complete(ctx context.Context, prompt string, payload any) (string, error)
}
