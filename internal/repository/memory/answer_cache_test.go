package memory

import (
	"testing"
	"time"

	"assembly-rag-be/internal/dto"
)

func TestAnswerCacheRoundTrip(t *testing.T) {
	c := NewAnswerCache(time.Minute)

	key := Key("국회 본회의 일정", 5)
	c.Save(key, &dto.QueryResponse{Answer: "목요일입니다."})

	got, found := c.Get(key)
	if !found {
		t.Fatal("expected cache hit")
	}
	if got.Answer != "목요일입니다." {
		t.Errorf("answer = %q", got.Answer)
	}
}

func TestAnswerCacheKeyNormalizes(t *testing.T) {
	if Key("  국회  일정 ", 5) != Key("국회 일정", 5) {
		t.Error("whitespace must not change the key")
	}
	if Key("Assembly Schedule", 5) != Key("assembly schedule", 5) {
		t.Error("case must not change the key")
	}
	if Key("국회 일정", 5) == Key("국회 일정", 10) {
		t.Error("retrieval size must change the key")
	}
}

func TestAnswerCacheFlush(t *testing.T) {
	c := NewAnswerCache(time.Minute)
	c.Save(Key("a", 5), &dto.QueryResponse{Answer: "a"})
	c.Save(Key("b", 5), &dto.QueryResponse{Answer: "b"})

	c.Flush()

	if c.Len() != 0 {
		t.Errorf("len = %d, want 0 after flush", c.Len())
	}
	if _, found := c.Get(Key("a", 5)); found {
		t.Error("expected miss after flush")
	}
}
