package server

import (
	"log"

	"assembly-rag-be/internal/bootstrap"
	"assembly-rag-be/internal/config"
	"assembly-rag-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app  *fiber.App
	port string
}

// New assembles the HTTP surface: CORS, request tracing, the uniform error
// envelope, then the routes. Query and health live at the root, trace
// watching under /ws, the ingestion API under /api.
func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // bulk ingestion payloads get large
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-Id",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-Id",
	}))
	app.Use(otelfiber.Middleware())
	app.Use(serverutils.ErrorHandlerMiddleware())

	container.QueryController.RegisterRoutes(app)
	container.TraceHandler.RegisterRoutes(app)
	container.MinutesController.RegisterRoutes(app.Group("/api"))

	return &Server{app: app, port: cfg.App.Port}
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.port)
	return s.app.Listen(":" + s.port)
}
