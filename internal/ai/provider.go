package ai

import "context"

// Provider abstracts a chat-completion backend. Implementations return the
// raw text of the model's reply and leave JSON handling to the caller.
type Provider interface {
	// Complete sends a system and user prompt and returns the reply text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// CompleteVision sends a prompt together with an image and returns the
	// reply text. The image is raw bytes plus its MIME type, for example
	// "image/png" or "application/pdf".
	CompleteVision(ctx context.Context, prompt, imageMIME string, image []byte) (string, error)

	// Name identifies the provider in logs and responses.
	Name() string
}
