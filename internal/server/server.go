package server

import (
	"errors"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/barkai-yeshivah/payment-api/internal/log"
)

// Server wires the fiber app, middleware and routes.
type Server struct {
	app    *fiber.App
	logger log.Logger
}

// New builds the HTTP server around the given provider client slice.
func New(checkoutClient SessionCreator, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NopLogger{}
	}
	h := NewHandler(checkoutClient, logger)

	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          errorHandler(logger),
		DisableStartupMessage: true,
	})

	// Panics inside handlers become errors and fall through to ErrorHandler.
	app.Use(recover.New())
	// All origins on all routes.
	app.Use(cors.New())

	app.Get("/", h.Health)
	app.Post("/api/create-checkout", h.CreateCheckout)
	app.Get("/api/checkout-session/:id", h.GetCheckoutSession)

	return &Server{app: app, logger: logger}
}

// Listen blocks serving HTTP on the given port.
func (s *Server) Listen(port int) error {
	return s.app.Listen(":" + strconv.Itoa(port))
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// errorHandler is the catch-all for anything a handler did not map itself.
// Routing errors keep their fiber status; everything else is a 500.
func errorHandler(logger log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logger.Errorf("unhandled error: method=%s path=%s err=%v", c.Method(), c.Path(), err)

		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		msg := "Internal server error"
		if err != nil && err.Error() != "" {
			msg = err.Error()
		}
		return c.Status(code).JSON(ErrorResponse{Error: msg})
	}
}
