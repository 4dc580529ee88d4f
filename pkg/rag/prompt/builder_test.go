package prompt

import (
	"strings"
	"testing"
	"time"

	"assembly-rag-be/pkg/rag"

	"github.com/google/uuid"
)

func testContext() rag.Context {
	spokenAt := time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)
	return rag.Context{
		Passages: []rag.Passage{
			{
				Id:       uuid.UUID{1},
				Content:  "위원장이 예산안 상정을 선언했습니다.",
				Score:    0.9,
				Speaker:  "김철수",
				SpokenAt: &spokenAt,
				Origin:   rag.OriginInternal,
			},
			{
				Id:      uuid.UUID{2},
				Content: "Budget coverage from the news.",
				Score:   0.7,
				Origin:  rag.OriginWeb,
				URL:     "https://news.example.com/a",
			},
		},
		TokenEstimate: 40,
	}
}

func TestBuildStep(t *testing.T) {
	query := rag.Query{Id: uuid.UUID{9}, Text: "예산안은 어떻게 되었나요?", History: []string{"user: 안녕하세요"}}
	b := NewBuilder(query, testContext())

	got := b.BuildStep(1, 3)

	for _, want := range []string{
		"<conversation_history>",
		"<reference_material>",
		"[Passage 1] origin: internal | speaker: 김철수 | date: 2024-11-05",
		"[Passage 2] origin: web | url: https://news.example.com/a",
		"<output_format>",
		`{"action": "retrieve", "query": "<focused sub-query>"}`,
		"reasoning round 1 of 3",
		"예산안은 어떻게 되었나요?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("BuildStep missing %q", want)
		}
	}
	if strings.Contains(got, "final round") {
		t.Errorf("BuildStep round 1 of 3 should not carry the final-round note")
	}
}

func TestBuildStepFinalRound(t *testing.T) {
	b := NewBuilder(rag.Query{Text: "q"}, testContext())

	got := b.BuildStep(3, 3)
	if !strings.Contains(got, "final round") {
		t.Errorf("BuildStep at the cap should carry the final-round note")
	}
}

func TestBuildAnswerOmitsEmptySections(t *testing.T) {
	b := NewBuilder(rag.Query{Text: "q"}, rag.Context{})

	got := b.BuildAnswer()
	if strings.Contains(got, "<reference_material>") {
		t.Errorf("BuildAnswer with empty context should omit reference material")
	}
	if strings.Contains(got, "<conversation_history>") {
		t.Errorf("BuildAnswer without history should omit the history section")
	}
	if !strings.Contains(got, "read aloud") {
		t.Errorf("BuildAnswer missing the accessibility instruction")
	}
}
