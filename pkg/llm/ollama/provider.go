package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"assembly-rag-be/pkg/llm"
)

const chatEndpoint = "/api/chat"

// maxErrorBody bounds how much of an Ollama error response lands in the
// wrapped error. Local models can echo the whole prompt back on failure.
const maxErrorBody = 512

// OllamaProvider talks to a local Ollama server. Cancellation and deadlines
// come from the caller's context; the retry envelope around this provider
// sets a per-attempt timeout, so the HTTP client itself carries none.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client:    &http.Client{},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *modelOptions `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type modelOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.BuildOptions(llm.Options{Temperature: 0.7}, opts...)

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payload := chatRequest{
		Model:    model,
		Messages: toChatMessages(history),
		Stream:   false,
		Options:  &modelOptions{Temperature: options.Temperature},
	}
	if options.MaxTokens > 0 {
		payload.Options.NumPredict = options.MaxTokens
	}

	var decoded chatResponse
	if err := o.post(ctx, chatEndpoint, payload, &decoded); err != nil {
		return "", err
	}
	return decoded.Message.Content, nil
}

// Generate sends a single-turn prompt. The agent loop builds full prompts
// itself, so one user message is all the chat API ever needs here.
func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// toChatMessages maps provider-agnostic roles onto Ollama's. "model" is what
// some upstream SDKs call the assistant role.
func toChatMessages(history []llm.Message) []chatMessage {
	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		messages[i] = chatMessage{Role: role, Content: msg.Content}
	}
	return messages
}

func (o *OllamaProvider) post(ctx context.Context, endpoint string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := raw
		if len(detail) > maxErrorBody {
			detail = detail[:maxErrorBody]
		}
		return fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(detail))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
