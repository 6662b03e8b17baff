package web

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/spacesedan/tonecheck/config"
	"github.com/spacesedan/tonecheck/internal/models"
	"github.com/spacesedan/tonecheck/internal/submission"
	"github.com/spacesedan/tonecheck/internal/tallies"
)

const RATE_LIMITED_MESSAGE = "Too many submissions, please slow down."

type RateLimiter interface {
	Allow(ctx context.Context, client string) bool
}

type TallyReader interface {
	GetTallies(ctx context.Context, day string) ([]models.ToneTally, error)
}

// Dependencies are the collaborators the server wires into every session.
// RateLimiter and Tallies are optional.
type Dependencies struct {
	Analyzer    submission.Analyzer
	Observers   []submission.Observer
	RateLimiter RateLimiter
	Tallies     TallyReader
	Health      map[string]*atomic.Bool
}

type Server struct {
	app        *fiber.App
	cfg        config.Settings
	deps       Dependencies
	sessions   *sessionStore
	submitWait time.Duration
}

func New(cfg config.Settings, deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "tonecheck",
		BodyLimit:             64 * 1024,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:        app,
		cfg:        cfg,
		deps:       deps,
		submitWait: cfg.SubmitWait,
		sessions: newSessionStore(cfg.SessionTTL, func(id string) *submission.Controller {
			return submission.NewController(id, deps.Analyzer, deps.Observers...)
		}),
	}

	app.Use(s.requestLogger)
	s.registerRoutes()
	return s
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	slog.Info("[Server] Listening", slog.String("addr", ":"+s.cfg.Port))
	return s.app.Listen(":" + s.cfg.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Get("/", s.handleIndex)
	s.app.Post("/analyze", s.handleAnalyze)
	s.app.Post("/reset", s.handleReset)
	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api")
	api.Get("/state", s.handleState)
	api.Put("/text", s.handleText)
	api.Post("/submit", s.handleSubmit)
	api.Post("/reset", s.handleAPIReset)
	api.Get("/tallies", s.handleTallies)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	slog.Debug("[Server] Request",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", c.Response().StatusCode()),
		slog.Duration("elapsed", time.Since(start)))
	return err
}

// controller returns the caller's session controller, starting a new session
// when the cookie is missing or has expired.
func (s *Server) controller(c *fiber.Ctx) *submission.Controller {
	// fiber values point into pooled request buffers; the store keeps the token as a map key.
	if ctl, ok := s.sessions.get(utils.CopyString(c.Cookies(SESSION_COOKIE))); ok {
		return ctl
	}

	token, ctl := s.sessions.create()
	c.Cookie(&fiber.Cookie{
		Name:     SESSION_COOKIE,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctl
}

func (s *Server) allowSubmission(c *fiber.Ctx) bool {
	if s.deps.RateLimiter == nil {
		return true
	}
	return s.deps.RateLimiter.Allow(c.UserContext(), c.IP())
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	page, err := renderPage(s.controller(c).Snapshot())
	if err != nil {
		slog.Error("[Server] Failed to render page", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong.")
	}
	c.Type("html", "utf-8")
	return c.Send(page)
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	ctl := s.controller(c)
	if !s.allowSubmission(c) {
		return c.Status(fiber.StatusTooManyRequests).SendString(RATE_LIMITED_MESSAGE)
	}

	ctl.OnTextChanged(utils.CopyString(c.FormValue("text")))
	done := ctl.Submit(c.UserContext())

	timer := time.NewTimer(s.submitWait)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		slog.Warn("[Server] Submission still pending, rendering loading state",
			slog.String("session", ctl.ID()))
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	s.controller(c).Reset()
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.controller(c).Snapshot())
}

type textRequest struct {
	Text *string `json:"text"`
}

func (s *Server) handleText(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil || req.Text == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body must be a JSON object with a text field"})
	}

	ctl := s.controller(c)
	ctl.OnTextChanged(utils.CopyString(*req.Text))
	return c.JSON(ctl.Snapshot())
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	ctl := s.controller(c)
	if !s.allowSubmission(c) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": RATE_LIMITED_MESSAGE})
	}

	ctl.Submit(c.UserContext())
	return c.Status(fiber.StatusAccepted).JSON(ctl.Snapshot())
}

func (s *Server) handleAPIReset(c *fiber.Ctx) error {
	ctl := s.controller(c)
	ctl.Reset()
	return c.JSON(ctl.Snapshot())
}

func (s *Server) handleTallies(c *fiber.Ctx) error {
	if s.deps.Tallies == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tallies are disabled"})
	}

	day := c.Query("day", time.Now().UTC().Format(tallies.DAY_FORMAT))
	if _, err := time.Parse(tallies.DAY_FORMAT, day); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "day must be formatted as YYYY-MM-DD"})
	}

	result, err := s.deps.Tallies.GetTallies(c.UserContext(), day)
	if err != nil {
		slog.Error("[Server] Failed to load tallies",
			slog.String("day", day),
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "tallies are unavailable"})
	}
	if result == nil {
		result = []models.ToneTally{}
	}
	return c.JSON(fiber.Map{"day": day, "tallies": result})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	deps := fiber.Map{}
	for name, healthy := range s.deps.Health {
		if healthy.Load() {
			deps[name] = "healthy"
		} else {
			deps[name] = "unhealthy"
		}
	}
	return c.JSON(fiber.Map{
		"status":       "ok",
		"sessions":     s.sessions.count(),
		"dependencies": deps,
	})
}
