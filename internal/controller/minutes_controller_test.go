package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assembly-rag-be/internal/dto"
	"assembly-rag-be/internal/pkg/serverutils"
	"assembly-rag-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubMinutesService struct {
	createRes *dto.CreateMinutesBulkResponse
	listRes   *dto.ListMinutesResponse
	statsRes  *dto.MinuteStatsResponse
	deleteRes *dto.DeleteMinutesResponse
	err       error

	gotCreate *dto.CreateMinutesBulkRequest
	gotList   *dto.ListMinutesRequest
	gotId     uuid.UUID
}

func (s *stubMinutesService) CreateBulk(ctx context.Context, request *dto.CreateMinutesBulkRequest) (*dto.CreateMinutesBulkResponse, error) {
	s.gotCreate = request
	return s.createRes, s.err
}

func (s *stubMinutesService) List(ctx context.Context, request *dto.ListMinutesRequest) (*dto.ListMinutesResponse, error) {
	s.gotList = request
	return s.listRes, s.err
}

func (s *stubMinutesService) Stats(ctx context.Context) (*dto.MinuteStatsResponse, error) {
	return s.statsRes, s.err
}

func (s *stubMinutesService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteMinutesResponse, error) {
	s.gotId = id
	return s.deleteRes, s.err
}

func newMinutesTestApp(stub *stubMinutesService, jwtSecret string) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewMinutesController(stub, jwtSecret).RegisterRoutes(api)
	return app
}

const validMinuteBody = `{
	"minutes": [
		{
			"minutes_type": "본회의",
			"minutes_date": "2024-07-15T00:00:00Z",
			"assembly_number": "제22대",
			"session_number": "제416회",
			"sub_session": "제1차",
			"speech_order": 3,
			"speaker": "홍길동",
			"position": "의원",
			"content": "예산안에 대해 질의하겠습니다."
		}
	]
}`

func TestMinutesControllerCreateBulk(t *testing.T) {
	t.Run("creates minutes and reports queued jobs", func(t *testing.T) {
		ids := []uuid.UUID{uuid.New()}
		stub := &stubMinutesService{createRes: &dto.CreateMinutesBulkResponse{Ids: ids, Queued: 1}}
		app := newMinutesTestApp(stub, "")

		req := httptest.NewRequest("POST", "/api/minutes/v1", strings.NewReader(validMinuteBody))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req, -1)

		assert.Equal(t, 201, resp.StatusCode)

		var result serverutils.BaseResponse[dto.CreateMinutesBulkResponse]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Success)
		assert.Equal(t, ids, result.Data.Ids)
		assert.Equal(t, 1, result.Data.Queued)

		assert.Len(t, stub.gotCreate.Minutes, 1)
		assert.Equal(t, "홍길동", stub.gotCreate.Minutes[0].Speaker)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		stub := &stubMinutesService{}
		app := newMinutesTestApp(stub, "")

		req := httptest.NewRequest("POST", "/api/minutes/v1", strings.NewReader(`{"minutes": []}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req, -1)

		assert.Equal(t, 400, resp.StatusCode)

		var result serverutils.BaseResponse[any]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, rag.KindInvalidQuery, result.ErrorKind)
		assert.Nil(t, stub.gotCreate)
	})

	t.Run("requires a bearer token when a secret is set", func(t *testing.T) {
		stub := &stubMinutesService{createRes: &dto.CreateMinutesBulkResponse{Queued: 1}}
		app := newMinutesTestApp(stub, "test-secret")

		req := httptest.NewRequest("POST", "/api/minutes/v1", strings.NewReader(validMinuteBody))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 401, resp.StatusCode)

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "indexer"})
		signed, err := token.SignedString([]byte("test-secret"))
		assert.NoError(t, err)

		req = httptest.NewRequest("POST", "/api/minutes/v1", strings.NewReader(validMinuteBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+signed)
		resp, _ = app.Test(req, -1)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("rejects a token signed with the wrong secret", func(t *testing.T) {
		stub := &stubMinutesService{}
		app := newMinutesTestApp(stub, "test-secret")

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "indexer"})
		signed, err := token.SignedString([]byte("other-secret"))
		assert.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/minutes/v1", strings.NewReader(validMinuteBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+signed)
		resp, _ := app.Test(req, -1)
		assert.Equal(t, 401, resp.StatusCode)
	})
}

func TestMinutesControllerList(t *testing.T) {
	t.Run("passes filters through to the service", func(t *testing.T) {
		stub := &stubMinutesService{listRes: &dto.ListMinutesResponse{Minutes: []dto.MinuteDTO{}, Total: 0}}
		app := newMinutesTestApp(stub, "")

		req := httptest.NewRequest("GET", "/api/minutes/v1?limit=10&offset=5&speaker=홍길동&type=본회의&from=2024-01-01&to=2024-07-01", nil)
		resp, _ := app.Test(req, -1)

		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 10, stub.gotList.Limit)
		assert.Equal(t, 5, stub.gotList.Offset)
		assert.Equal(t, "홍길동", stub.gotList.Speaker)
		assert.Equal(t, "본회의", stub.gotList.MinutesType)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), stub.gotList.From)
		assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), stub.gotList.To)
	})

	t.Run("rejects a malformed date filter", func(t *testing.T) {
		stub := &stubMinutesService{}
		app := newMinutesTestApp(stub, "")

		req := httptest.NewRequest("GET", "/api/minutes/v1?from=yesterday", nil)
		resp, _ := app.Test(req, -1)

		assert.Equal(t, 400, resp.StatusCode)
		assert.Nil(t, stub.gotList)
	})
}

func TestMinutesControllerStats(t *testing.T) {
	stub := &stubMinutesService{statsRes: &dto.MinuteStatsResponse{Minutes: 12, Embeddings: 48}}
	app := newMinutesTestApp(stub, "")

	req := httptest.NewRequest("GET", "/api/minutes/v1/stats", nil)
	resp, _ := app.Test(req, -1)

	assert.Equal(t, 200, resp.StatusCode)

	var result serverutils.BaseResponse[dto.MinuteStatsResponse]
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, int64(12), result.Data.Minutes)
	assert.Equal(t, int64(48), result.Data.Embeddings)
}

func TestMinutesControllerDelete(t *testing.T) {
	t.Run("deletes a minute by id", func(t *testing.T) {
		stub := &stubMinutesService{deleteRes: &dto.DeleteMinutesResponse{Deleted: 1}}
		app := newMinutesTestApp(stub, "")

		id := uuid.New()
		req := httptest.NewRequest("DELETE", "/api/minutes/v1/"+id.String(), nil)
		resp, _ := app.Test(req, -1)

		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, id, stub.gotId)

		var result serverutils.BaseResponse[dto.DeleteMinutesResponse]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, 1, result.Data.Deleted)
	})

	t.Run("rejects a malformed minute id", func(t *testing.T) {
		stub := &stubMinutesService{}
		app := newMinutesTestApp(stub, "")

		req := httptest.NewRequest("DELETE", "/api/minutes/v1/not-a-uuid", nil)
		resp, _ := app.Test(req, -1)

		assert.Equal(t, 400, resp.StatusCode)

		var result serverutils.BaseResponse[any]
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, rag.KindInvalidQuery, result.ErrorKind)
	})
}
