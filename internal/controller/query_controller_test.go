package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"assembly-rag-be/internal/dto"
	"assembly-rag-be/internal/pkg/serverutils"
	"assembly-rag-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubQueryService struct {
	res       *dto.QueryResponse
	err       error
	gotId     uuid.UUID
	gotQuery  *dto.QueryRequest
	callCount int
}

func (s *stubQueryService) Ask(ctx context.Context, requestId uuid.UUID, request *dto.QueryRequest) (*dto.QueryResponse, error) {
	s.callCount++
	s.gotId = requestId
	s.gotQuery = request
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func newQueryTestApp(stub *stubQueryService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewQueryController(stub).RegisterRoutes(app)
	return app
}

func postQuery(t *testing.T, app *fiber.App, body string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	return resp
}

func TestQueryControllerAsk(t *testing.T) {
	sourceId := uuid.New()

	t.Run("answers a valid query", func(t *testing.T) {
		stub := &stubQueryService{
			res: &dto.QueryResponse{
				Answer:       "제387회 국회 본회의에서 예산안이 의결되었습니다.",
				Sources:      []uuid.UUID{sourceId},
				Strategy:     "internal_only",
				Iterations:   1,
				ProcessingMs: 42,
			},
		}
		app := newQueryTestApp(stub)

		resp := postQuery(t, app, `{"query": "예산안 심사 경과를 알려줘"}`, nil)

		assert.Equal(t, 200, resp.StatusCode)

		var result serverutils.BaseResponse[dto.QueryResponse]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Success)
		assert.Equal(t, "제387회 국회 본회의에서 예산안이 의결되었습니다.", result.Data.Answer)
		assert.Equal(t, "internal_only", result.Data.Strategy)
		assert.Equal(t, []uuid.UUID{sourceId}, result.Data.Sources)
		assert.Equal(t, 1, result.Data.Iterations)

		assert.Equal(t, 1, stub.callCount)
		assert.Equal(t, "예산안 심사 경과를 알려줘", stub.gotQuery.Query)
		assert.Equal(t, uuid.Nil, stub.gotId)
	})

	t.Run("echoes a client supplied request id", func(t *testing.T) {
		stub := &stubQueryService{res: &dto.QueryResponse{Answer: "ok", Strategy: "internal_only"}}
		app := newQueryTestApp(stub)

		requestId := uuid.New()
		resp := postQuery(t, app, `{"query": "질의"}`, map[string]string{"X-Request-Id": requestId.String()})

		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, requestId.String(), resp.Header.Get("X-Request-Id"))
		assert.Equal(t, requestId, stub.gotId)
	})

	t.Run("rejects a malformed request id", func(t *testing.T) {
		stub := &stubQueryService{res: &dto.QueryResponse{Answer: "ok"}}
		app := newQueryTestApp(stub)

		resp := postQuery(t, app, `{"query": "질의"}`, map[string]string{"X-Request-Id": "not-a-uuid"})

		assert.Equal(t, 400, resp.StatusCode)

		var result serverutils.BaseResponse[any]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.False(t, result.Success)
		assert.Equal(t, rag.KindInvalidQuery, result.ErrorKind)
		assert.Equal(t, 0, stub.callCount)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		stub := &stubQueryService{}
		app := newQueryTestApp(stub)

		resp := postQuery(t, app, `{"query": `, nil)

		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, 0, stub.callCount)
	})

	t.Run("rejects a missing query", func(t *testing.T) {
		stub := &stubQueryService{}
		app := newQueryTestApp(stub)

		resp := postQuery(t, app, `{"top_k": 3}`, nil)

		assert.Equal(t, 400, resp.StatusCode)

		var result serverutils.BaseResponse[any]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, rag.KindInvalidQuery, result.ErrorKind)
		assert.Equal(t, 0, stub.callCount)
	})

	t.Run("maps service errors to status codes", func(t *testing.T) {
		cases := []struct {
			name       string
			err        error
			wantStatus int
			wantKind   string
		}{
			{"invalid query", fmt.Errorf("query is empty: %w", rag.ErrInvalidQuery), 400, rag.KindInvalidQuery},
			{"store unavailable", fmt.Errorf("vector search: %w", rag.ErrStoreUnavailable), 503, rag.KindStoreUnavailable},
			{"model unavailable", fmt.Errorf("generate: %w", rag.ErrModelUnavailable), 503, rag.KindModelUnavailable},
			{"malformed model response", fmt.Errorf("decode action: %w", rag.ErrMalformedResponse), 503, rag.KindMalformedResponse},
			{"no context", fmt.Errorf("nothing retrieved: %w", rag.ErrNoContext), 422, rag.KindNoContext},
			{"unclassified", errors.New("boom"), 500, rag.KindInternal},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				stub := &stubQueryService{err: tc.err}
				app := newQueryTestApp(stub)

				resp := postQuery(t, app, `{"query": "질의"}`, nil)

				assert.Equal(t, tc.wantStatus, resp.StatusCode)

				var result serverutils.BaseResponse[any]
				assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
				assert.False(t, result.Success)
				assert.Equal(t, tc.wantKind, result.ErrorKind)
			})
		}
	})

	t.Run("maps agent errors through their wrapped cause", func(t *testing.T) {
		agentErr := &rag.AgentError{State: "RETRIEVING", Err: rag.ErrStoreUnavailable}
		stub := &stubQueryService{err: agentErr}
		app := newQueryTestApp(stub)

		resp := postQuery(t, app, `{"query": "질의"}`, nil)

		assert.Equal(t, 503, resp.StatusCode)

		var result serverutils.BaseResponse[any]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, rag.KindStoreUnavailable, result.ErrorKind)
	})
}

func TestQueryControllerHealthz(t *testing.T) {
	app := newQueryTestApp(&stubQueryService{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
