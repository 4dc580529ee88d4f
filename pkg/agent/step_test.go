package agent

import (
	"errors"
	"testing"

	"assembly-rag-be/pkg/rag"
)

func TestParseStep(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Step
		wantErr bool
	}{
		{
			name: "retrieve step",
			raw:  `{"action": "retrieve", "query": "예산안 심사 일정"}`,
			want: Step{Kind: StepRetrieve, Query: "예산안 심사 일정"},
		},
		{
			name: "answer step",
			raw:  `{"action": "answer", "answer": "본회의는 목요일에 열립니다."}`,
			want: Step{Kind: StepAnswer, Answer: "본회의는 목요일에 열립니다."},
		},
		{
			name: "json wrapped in prose",
			raw:  "Sure, here is my decision:\n```json\n{\"action\": \"answer\", \"answer\": \"done\"}\n```\nLet me know.",
			want: Step{Kind: StepAnswer, Answer: "done"},
		},
		{
			name: "action is case insensitive",
			raw:  `{"action": "Retrieve", "query": "추경 편성"}`,
			want: Step{Kind: StepRetrieve, Query: "추경 편성"},
		},
		{
			name: "fields are trimmed",
			raw:  `{"action": " answer ", "answer": "  ok  "}`,
			want: Step{Kind: StepAnswer, Answer: "ok"},
		},
		{
			name:    "no json at all",
			raw:     "I think we should look for more documents.",
			wantErr: true,
		},
		{
			name:    "broken json",
			raw:     `{"action": "answer", "answer": }`,
			wantErr: true,
		},
		{
			name:    "unknown action",
			raw:     `{"action": "summarize", "answer": "x"}`,
			wantErr: true,
		},
		{
			name:    "retrieve without query",
			raw:     `{"action": "retrieve", "query": "   "}`,
			wantErr: true,
		},
		{
			name:    "answer without text",
			raw:     `{"action": "answer"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStep(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got step %+v", got)
				}
				if !errors.Is(err, rag.ErrMalformedResponse) {
					t.Errorf("error = %v, want ErrMalformedResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("step = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractJSONKeepsNestedBraces(t *testing.T) {
	raw := `prefix {"action": "retrieve", "query": "a {b} c"} suffix`
	step, err := ParseStep(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Query != "a {b} c" {
		t.Errorf("query = %q, want %q", step.Query, "a {b} c")
	}
}
