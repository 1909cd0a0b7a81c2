package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/runstate"
)

const serviceName = "blog-engine"

// JobStarter launches background work on the shared run slot.
type JobStarter interface {
	StartGenerate(ctx context.Context) error
	StartJob(ctx context.Context, name string) error
}

// StatusReader exposes the run slot for reporting.
type StatusReader interface {
	Snapshot() runstate.Snapshot
}

// Deps wires the HTTP surface.
type Deps struct {
	Jobs      JobStarter
	Status    StatusReader
	APISecret string
	Logger    *slog.Logger
	// JobContext outlives requests; background jobs stop when it is cancelled.
	JobContext context.Context
}

// Server is the fiber application serving health, status and triggers.
type Server struct {
	app    *fiber.App
	deps   Deps
	logger *slog.Logger
}

// New builds the application and registers routes.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.JobContext == nil {
		deps.JobContext = context.Background()
	}
	s := &Server{deps: deps, logger: deps.Logger}

	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: s.handleError,
	})
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	app.Get("/", s.health)
	app.Get("/health", s.health)
	app.Get("/status", s.status)

	generate := func(ctx context.Context) error { return deps.Jobs.StartGenerate(ctx) }
	app.All("/generate", s.trigger("Article generation started", generate))
	app.All("/trigger", s.trigger("Article generation started", generate))
	app.All("/migrate-geo", s.trigger("GEO migration started", s.job(domain.JobGEOMigration)))
	app.All("/backfill-references", s.trigger("References backfill started", s.job(domain.JobReferencesBackfill)))
	app.All("/migrate-products", s.trigger("Product migration started", s.job(domain.JobFeaturedProducts)))
	app.All("/migrate-geo-posts", s.trigger("Blog post GEO migration started", s.job(domain.JobBlogPostGEO)))

	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})

	s.app = app
	return s
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on the port until Shutdown.
func (s *Server) Listen(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

type healthRunResult struct {
	Success           bool `json:"success"`
	ArticlesGenerated int  `json:"articlesGenerated"`
}

type healthResponse struct {
	Status        string           `json:"status"`
	Service       string           `json:"service"`
	IsRunning     bool             `json:"isRunning"`
	LastRunTime   *time.Time       `json:"lastRunTime"`
	LastRunResult *healthRunResult `json:"lastRunResult"`
}

func (s *Server) health(c fiber.Ctx) error {
	snap := s.deps.Status.Snapshot()
	resp := healthResponse{
		Status:      "ok",
		Service:     serviceName,
		IsRunning:   snap.IsRunning,
		LastRunTime: snap.LastRunTime,
	}
	if r := snap.LastRunResult; r != nil {
		resp.LastRunResult = &healthRunResult{Success: r.Success, ArticlesGenerated: r.ArticlesGenerated}
	}
	return c.JSON(resp)
}

func (s *Server) status(c fiber.Ctx) error {
	return c.JSON(s.deps.Status.Snapshot())
}

func (s *Server) job(name string) func(context.Context) error {
	return func(ctx context.Context) error { return s.deps.Jobs.StartJob(ctx, name) }
}

// trigger authenticates before checking the method so unauthenticated
// callers learn nothing about the route.
func (s *Server) trigger(message string, start func(context.Context) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !s.authorized(c.Get(fiber.HeaderAuthorization)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized. Provide valid API_SECRET."})
		}
		if c.Method() != fiber.MethodPost {
			c.Set(fiber.HeaderAllow, fiber.MethodPost)
			return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Method not allowed. Use POST."})
		}

		err := start(s.deps.JobContext)
		switch {
		case errors.Is(err, domain.ErrBusy):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":     "Job already running",
				"message":   "Please wait for the current job to complete.",
				"isRunning": true,
			})
		case err != nil:
			return err
		}

		s.logger.Info("job accepted", "path", c.Path(), "request_id", requestid.FromContext(c))
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message":       message,
			"status":        "started",
			"checkStatusAt": "/status",
		})
	}
}

// authorized compares the bearer token in constant time. An empty secret
// locks the trigger endpoints.
func (s *Server) authorized(header string) bool {
	if s.deps.APISecret == "" {
		return false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.deps.APISecret)) == 1
}

func (s *Server) handleError(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	s.logger.Error("request failed", "path", c.Path(), "status", code, "error", err)
	return c.Status(code).JSON(fiber.Map{"error": message})
}
