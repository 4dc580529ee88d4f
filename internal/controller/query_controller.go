package controller

import (
	"fmt"

	"assembly-rag-be/internal/dto"
	"assembly-rag-be/internal/pkg/serverutils"
	"assembly-rag-be/internal/service"
	"assembly-rag-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Healthz(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{
		queryService: queryService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", c.Ask)
	r.Get("/healthz", c.Healthz)
}

// Ask runs one question through the agent loop. An optional X-Request-Id
// header (UUID) names the run, so a trace watcher opened beforehand on
// /ws/trace/:requestId receives its events.
func (c *queryController) Ask(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fmt.Errorf("malformed request body: %w", rag.ErrInvalidQuery)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%v: %w", err, rag.ErrInvalidQuery)
	}

	requestId := uuid.Nil
	if header := ctx.Get("X-Request-Id"); header != "" {
		parsed, err := uuid.Parse(header)
		if err != nil {
			return fmt.Errorf("X-Request-Id must be a UUID: %w", rag.ErrInvalidQuery)
		}
		requestId = parsed
	}

	res, err := c.queryService.Ask(ctx.UserContext(), requestId, &req)
	if err != nil {
		return err
	}

	if requestId != uuid.Nil {
		ctx.Set("X-Request-Id", requestId.String())
	}
	return ctx.JSON(serverutils.SuccessResponse("Success answer query", res))
}

func (c *queryController) Healthz(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}
