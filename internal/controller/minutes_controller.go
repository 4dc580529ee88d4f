package controller

import (
	"fmt"
	"time"

	"assembly-rag-be/internal/dto"
	"assembly-rag-be/internal/pkg/serverutils"
	"assembly-rag-be/internal/service"
	"assembly-rag-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMinutesController interface {
	RegisterRoutes(r fiber.Router)
	CreateBulk(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type minutesController struct {
	minutesService service.IMinutesService
	jwtSecret      string
}

func NewMinutesController(minutesService service.IMinutesService, jwtSecret string) IMinutesController {
	return &minutesController{
		minutesService: minutesService,
		jwtSecret:      jwtSecret,
	}
}

func (c *minutesController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/minutes/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("", c.CreateBulk)
	h.Get("", c.List)
	h.Get("stats", c.Stats)
	h.Delete(":id", c.Delete)
}

func (c *minutesController) CreateBulk(ctx *fiber.Ctx) error {
	var req dto.CreateMinutesBulkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fmt.Errorf("malformed request body: %w", rag.ErrInvalidQuery)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%v: %w", err, rag.ErrInvalidQuery)
	}

	res, err := c.minutesService.CreateBulk(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create minutes", res))
}

func (c *minutesController) List(ctx *fiber.Ctx) error {
	request := &dto.ListMinutesRequest{
		Limit:       ctx.QueryInt("limit", 50),
		Offset:      ctx.QueryInt("offset", 0),
		Speaker:     ctx.Query("speaker"),
		MinutesType: ctx.Query("type"),
	}

	var err error
	if request.From, err = parseDateParam(ctx.Query("from")); err != nil {
		return fmt.Errorf("from must be a YYYY-MM-DD date: %w", rag.ErrInvalidQuery)
	}
	if request.To, err = parseDateParam(ctx.Query("to")); err != nil {
		return fmt.Errorf("to must be a YYYY-MM-DD date: %w", rag.ErrInvalidQuery)
	}

	res, err := c.minutesService.List(ctx.UserContext(), request)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list minutes", res))
}

func parseDateParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}

func (c *minutesController) Stats(ctx *fiber.Ctx) error {
	res, err := c.minutesService.Stats(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success corpus stats", res))
}

func (c *minutesController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fmt.Errorf("minute id must be a UUID: %w", rag.ErrInvalidQuery)
	}

	res, err := c.minutesService.Delete(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete minute", res))
}
