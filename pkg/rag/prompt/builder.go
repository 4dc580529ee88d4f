package prompt

import (
	"fmt"
	"strings"

	"assembly-rag-be/pkg/rag"
)

// StrictJSONReminder is appended when the model's previous step reply could
// not be parsed and the call is retried once.
const StrictJSONReminder = "REMINDER: your previous reply could not be parsed. " +
	"Respond with ONLY the JSON object described in <output_format>, nothing else."

// Builder renders agent prompts from a query and its assembled context.
type Builder struct {
	query   rag.Query
	context rag.Context
}

// NewBuilder creates a prompt builder for one reasoning round.
func NewBuilder(query rag.Query, context rag.Context) *Builder {
	return &Builder{
		query:   query,
		context: context,
	}
}

// BuildStep renders the reasoning prompt: the model must decide between a
// follow-up retrieval and a final answer, replying as a single JSON object.
func (b *Builder) BuildStep(iteration, maxIterations int) string {
	var prompt strings.Builder

	b.writeHistory(&prompt)
	b.writeReferenceMaterial(&prompt)

	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a research agent answering questions about National Assembly meeting minutes.\n")
	prompt.WriteString("Decide the next action:\n")
	prompt.WriteString("- If the reference material already answers the question, act \"answer\" with the final answer text.\n")
	prompt.WriteString("- If one focused follow-up search would close a concrete gap, act \"retrieve\" with a short sub-query.\n")
	fmt.Fprintf(&prompt, "This is reasoning round %d of %d.\n", iteration, maxIterations)
	if iteration >= maxIterations {
		prompt.WriteString("This is the final round: prefer answering from what you have.\n")
	}
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond ONLY with a JSON object, no prose before or after:\n")
	prompt.WriteString(`{"action": "retrieve", "query": "<focused sub-query>"}` + "\n")
	prompt.WriteString("or\n")
	prompt.WriteString(`{"action": "answer", "answer": "<final answer for the user>"}` + "\n")
	prompt.WriteString("</output_format>\n\n")

	b.writeUserQuestion(&prompt)

	return prompt.String()
}

// BuildAnswer renders the answer-only prompt used when the iteration cap
// forces termination and a best-effort answer is still possible.
func (b *Builder) BuildAnswer() string {
	var prompt strings.Builder

	b.writeHistory(&prompt)
	b.writeReferenceMaterial(&prompt)

	prompt.WriteString("<task>\n")
	prompt.WriteString("Answer the user's question using ONLY the reference material above.\n")
	prompt.WriteString("The reply is read aloud to visually-impaired users:\n")
	prompt.WriteString("- Lead with the core conclusion in one or two sentences.\n")
	prompt.WriteString("- Follow with the key discussion points and who said what.\n")
	prompt.WriteString("- Plain conversational sentences. No markdown, no bullet symbols, no tables.\n")
	prompt.WriteString("- If the material does not contain the answer, say so honestly.\n")
	prompt.WriteString("</task>\n\n")

	b.writeUserQuestion(&prompt)

	return prompt.String()
}

func (b *Builder) writeHistory(prompt *strings.Builder) {
	if len(b.query.History) == 0 {
		return
	}

	prompt.WriteString("<conversation_history>\n")
	for _, turn := range b.query.History {
		prompt.WriteString(turn)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</conversation_history>\n\n")
}

func (b *Builder) writeReferenceMaterial(prompt *strings.Builder) {
	if b.context.Empty() {
		return
	}

	prompt.WriteString("<reference_material>\n")
	prompt.WriteString("CRITICAL: This is the ONLY data source. Do NOT use outside knowledge.\n")
	prompt.WriteString("Each passage is a distinct source.\n\n")

	for i, p := range b.context.Passages {
		fmt.Fprintf(prompt, "[Passage %d] %s\n", i+1, passageHeader(p))
		prompt.WriteString(p.Content)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("</reference_material>\n\n")
}

func (b *Builder) writeUserQuestion(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.query.Text)
	prompt.WriteString("\n</user_question>\n")
}

func passageHeader(p rag.Passage) string {
	parts := []string{"origin: " + p.Origin}
	if p.Speaker != "" {
		parts = append(parts, "speaker: "+p.Speaker)
	}
	if p.SpokenAt != nil {
		parts = append(parts, "date: "+p.SpokenAt.Format("2006-01-02"))
	}
	if p.URL != "" {
		parts = append(parts, "url: "+p.URL)
	}
	return strings.Join(parts, " | ")
}
