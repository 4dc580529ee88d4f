package llm

import "context"

// Chat roles shared by every backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn in provider-neutral form. Providers map Role onto
// whatever their wire format calls it.
type Message struct {
	Role    string
	Content string
}

// LLMProvider is the contract a generation backend fulfills. Implementations
// must be safe for concurrent use: the retrying client shares one instance
// across requests.
type LLMProvider interface {
	// Chat sends a full conversation and returns the model's reply.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate is the single-prompt convenience wrapper over Chat.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// Options carries per-call generation parameters. Zero values fall back to
// the provider's defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

// Option mutates per-call Options.
type Option func(*Options)

func WithTemperature(temp float64) Option {
	return func(o *Options) { o.Temperature = temp }
}

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// BuildOptions folds opts over a provider's defaults.
func BuildOptions(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}
