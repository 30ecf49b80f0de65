package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Screen     *ScreenHandler
	Roles      *RolesHandler
	Upload     *UploadHandler
	Evaluation *EvaluationHandler
	Result     *ResultHandler
}

// RegisterRoutes mounts every endpoint on app. Nil handlers are skipped.
func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	if h.Roles != nil {
		api.Get("/roles", h.Roles.HandleList)
		api.Get("/roles/:id", h.Roles.HandleGet)
	}
	if h.Screen != nil {
		api.Post("/upload", h.Screen.HandleScreen)
	}

	v1 := api.Group("/v1")
	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	if h.Upload != nil {
		v1.Post("/upload", h.Upload.HandleUpload)
	}
	if h.Evaluation != nil {
		v1.Post("/evaluate", h.Evaluation.HandleEvaluate)
	}
	if h.Result != nil {
		v1.Get("/result/:id", h.Result.HandleGetResult)
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Résumé Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/roles",
				"POST /api/upload",
				"POST /api/v1/upload",
				"POST /api/v1/evaluate",
				"GET /api/v1/result/:id",
			},
		})
	})
}

// ErrorHandler renders fiber errors as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
