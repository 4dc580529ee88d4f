package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"assembly-rag-be/pkg/rag"
	ragcontext "assembly-rag-be/pkg/rag/context"
	"assembly-rag-be/pkg/rag/prompt"
)

// Retriever is the narrow retrieval capability the controller depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query rag.Query, k int) ([]rag.Passage, error)
}

// StepGenerator is the narrow generation capability the controller depends on.
type StepGenerator interface {
	Generate(ctx context.Context, prompt string) (Step, error)
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config bounds a single run.
type Config struct {
	MaxIterations int
	TopK          int
	TokenBudget   int
}

func DefaultConfig() Config {
	return Config{
		MaxIterations: 3,
		TopK:          5,
		TokenBudget:   3000,
	}
}

// Result is a finished run. Sources holds the assembled passages the answer
// was grounded on, already ranked and deduplicated.
type Result struct {
	Answer     string
	Sources    []rag.Passage
	Iterations int
	State      State
	Trace      []TraceEvent
}

// Controller drives the bounded retrieve-reason loop: retrieve, assemble a
// context window, ask the model for a step, and either answer or retrieve
// again until the iteration cap forces termination.
type Controller struct {
	retriever Retriever
	generator StepGenerator
	config    Config
	trace     TraceFunc
	logger    *log.Logger
}

// NewController wires a controller. trace may be nil when nobody is
// listening for live events.
func NewController(retriever Retriever, generator StepGenerator, config Config, trace TraceFunc, logger *log.Logger) *Controller {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultConfig().MaxIterations
	}
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	if config.TokenBudget <= 0 {
		config.TokenBudget = DefaultConfig().TokenBudget
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		retriever: retriever,
		generator: generator,
		config:    config,
		trace:     trace,
		logger:    logger,
	}
}

// Run executes the loop for one query. The returned Result is non-nil in
// every case so callers keep the partial trace; on failure the error is an
// *rag.AgentError wrapping the terminal cause.
func (c *Controller) Run(ctx context.Context, query rag.Query) (*Result, error) {
	st := &AgentState{State: StateStart}

	emit := func(step StepKind, detail string) {
		event := TraceEvent{
			State:     st.State,
			Iteration: st.Iteration,
			Step:      string(step),
			Detail:    detail,
			At:        time.Now(),
		}
		st.Trace = append(st.Trace, event)
		if c.trace != nil {
			c.trace(query.Id, event)
		}
	}

	fail := func(cause error) (*Result, error) {
		failedAt := st.State
		st.State = StateFailed
		emit("", cause.Error())
		c.logger.Printf("[AGENT] Run %s failed in %s: %v", query.Id, failedAt, cause)
		return &Result{Iterations: st.Iteration, State: StateFailed, Trace: st.Trace},
			&rag.AgentError{State: string(failedAt), Err: cause}
	}

	answered := func(answer string) (*Result, error) {
		st.State = StateAnswered
		emit("", fmt.Sprintf("answered with %d sources", len(st.Context.Passages)))
		c.logger.Printf("[AGENT] Run %s answered after %d iteration(s), %d sources",
			query.Id, st.Iteration, len(st.Context.Passages))
		return &Result{
			Answer:     answer,
			Sources:    st.Context.Passages,
			Iterations: st.Iteration,
			State:      StateAnswered,
			Trace:      st.Trace,
		}, nil
	}

	c.logger.Printf("[AGENT] Starting run %s: %s", query.Id, truncate(query.Text, 50))
	emit("", "run started")

	// Initial retrieval with the user's query as-is.
	st.State = StateRetrieving
	emit("", "retrieving: "+truncate(query.Text, 80))

	passages, err := c.retriever.Retrieve(ctx, query, c.config.TopK)
	if err != nil {
		return fail(err)
	}
	st.Accumulated = ragcontext.Merge(nil, passages)

	for {
		// One reasoning round over everything gathered so far.
		st.Iteration++
		st.Context = ragcontext.Assemble(st.Accumulated, c.config.TokenBudget)

		st.State = StateReasoning
		emit("", fmt.Sprintf("reasoning over %d passages (%d tokens)",
			len(st.Context.Passages), st.Context.TokenEstimate))

		builder := prompt.NewBuilder(query, st.Context)
		step, err := c.generator.Generate(ctx, builder.BuildStep(st.Iteration, c.config.MaxIterations))
		if err != nil {
			return fail(err)
		}
		emit(step.Kind, truncate(step.Query+step.Answer, 80))

		if step.Kind == StepAnswer {
			return answered(step.Answer)
		}

		if st.Iteration < c.config.MaxIterations {
			st.State = StateRetrieving
			emit("", "retrieving: "+truncate(step.Query, 80))

			sub := rag.Query{Id: query.Id, Text: step.Query, History: query.History}
			fresh, err := c.retriever.Retrieve(ctx, sub, c.config.TopK)
			if err != nil {
				return fail(err)
			}
			st.Accumulated = ragcontext.Merge(st.Accumulated, fresh)
			continue
		}

		// The model still wants to retrieve but the cap is spent. With an
		// empty context there is nothing to answer from; otherwise a plain
		// answer prompt produces a best-effort reply.
		if st.Context.Empty() {
			return fail(fmt.Errorf("iteration cap reached with nothing retrieved: %w", rag.ErrNoContext))
		}

		c.logger.Printf("[AGENT] Run %s hit iteration cap (%d), forcing answer from %d passages",
			query.Id, c.config.MaxIterations, len(st.Context.Passages))
		emit("", "iteration cap reached, forcing answer")

		answer, err := c.generator.Complete(ctx, builder.BuildAnswer())
		if err != nil {
			return fail(err)
		}
		return answered(answer)
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
