package agent

import (
	"context"
	"log"

	"assembly-rag-be/pkg/llm"
	"assembly-rag-be/pkg/rag/prompt"
)

var _ StepGenerator = &Generator{}

// Generator asks the model for reasoning steps and final answers through
// the retrying llm client.
type Generator struct {
	client      *llm.Client
	temperature float64
	maxTokens   int
	logger      *log.Logger
}

func NewGenerator(client *llm.Client, temperature float64, maxTokens int, logger *log.Logger) *Generator {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		client:      client,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Generate produces the next step. Output that cannot be parsed is retried
// once with a strict format reminder appended; if the second attempt is
// still unparseable the rag.ErrMalformedResponse surfaces to the caller.
func (g *Generator) Generate(ctx context.Context, promptText string) (Step, error) {
	raw, err := g.client.Complete(ctx, promptText, g.options()...)
	if err != nil {
		return Step{}, err
	}

	step, parseErr := ParseStep(raw)
	if parseErr == nil {
		return step, nil
	}
	g.logger.Printf("[WARN] step parse failed, retrying with strict reminder: %v", parseErr)

	raw, err = g.client.Complete(ctx, promptText+"\n\n"+prompt.StrictJSONReminder, g.options()...)
	if err != nil {
		return Step{}, err
	}
	return ParseStep(raw)
}

// Complete returns raw answer text, used when the controller forces
// termination and needs a best-effort answer rather than a structured step.
func (g *Generator) Complete(ctx context.Context, promptText string) (string, error) {
	return g.client.Complete(ctx, promptText, g.options()...)
}

func (g *Generator) options() []llm.Option {
	return []llm.Option{
		llm.WithTemperature(g.temperature),
		llm.WithMaxTokens(g.maxTokens),
	}
}
