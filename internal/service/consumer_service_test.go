package service

import (
	"testing"
	"time"

	"assembly-rag-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestContextualText(t *testing.T) {
	date := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		minute entity.Minute
		want   string
	}{
		{
			name: "full session metadata",
			minute: entity.Minute{
				MinutesType:    "본회의",
				MinutesDate:    date,
				AssemblyNumber: "제22대",
				SessionNumber:  "제416회",
				SubSession:     "제1차",
				SpeechOrder:    3,
				Speaker:        "홍길동",
				Position:       "의원",
				Content:        "예산안에 대해 질의하겠습니다.",
			},
			want: "제22대 제416회 제1차 | 2024년 07월 15일 | 회의유형: 본회의 | 발언자: 홍길동 (의원) | 발언순서: 3\n\n발언내용: 예산안에 대해 질의하겠습니다.",
		},
		{
			name: "speaker without a position",
			minute: entity.Minute{
				MinutesType:    "상임위원회",
				MinutesDate:    date,
				AssemblyNumber: "제22대",
				SessionNumber:  "제416회",
				SubSession:     "제2차",
				SpeechOrder:    1,
				Speaker:        "김철수",
				Content:        "동의합니다.",
			},
			want: "제22대 제416회 제2차 | 2024년 07월 15일 | 회의유형: 상임위원회 | 발언자: 김철수 | 발언순서: 1\n\n발언내용: 동의합니다.",
		},
		{
			name: "procedural entry without speaker or order",
			minute: entity.Minute{
				MinutesType:    "본회의",
				MinutesDate:    date,
				AssemblyNumber: "제22대",
				SessionNumber:  "제416회",
				SubSession:     "제1차",
				Content:        "개의를 선포합니다.",
			},
			want: "제22대 제416회 제1차 | 2024년 07월 15일 | 회의유형: 본회의\n\n발언내용: 개의를 선포합니다.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ContextualText(&tc.minute))
		})
	}
}
