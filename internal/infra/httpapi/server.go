package httpapi

import (
	"context"
	"strings"
	"time"

	"school_dashboard/internal/app"
	"school_dashboard/internal/domain/calendar"
	"school_dashboard/internal/domain/holiday"
	"school_dashboard/internal/domain/substitution"
	"school_dashboard/internal/domain/transit"
	"school_dashboard/internal/domain/weather"
	"school_dashboard/internal/infra/logger"
	"school_dashboard/internal/infra/metrics"
	"school_dashboard/internal/kiosk"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

type DSBProvider interface {
	TimeTables(ctx context.Context) ([]substitution.TimeTable, error)
	News(ctx context.Context) ([]substitution.News, error)
}

type PlanProvider interface {
	Plans(ctx context.Context) ([]*substitution.Plan, error)
	Grouped(ctx context.Context, now time.Time) (*app.GroupedPlan, error)
}

type CalendarProvider interface {
	Upcoming(ctx context.Context, limit int) ([]calendar.Event, error)
}

// CacheReader gives access to the last stored API responses.
type CacheReader interface {
	RawJSON(ctx context.Context, key string) (string, bool, error)
}

type HealthChecker interface {
	Check(ctx context.Context) *app.HealthReport
}

// StateProvider is a dashboard panel.
type StateProvider[T any] interface {
	State() app.PanelState[T]
}

// KioskDisplay is the server-side presentation engine.
type KioskDisplay interface {
	Snapshot() kiosk.DisplaySnapshot
	ReportViewport(name string, contentHeight, viewportHeight float64) (bool, error)
	StartCycle() error
}

// Dependencies are the services behind the routes. Panels left unset are
// not mounted; a set panel must be usable.
type Dependencies struct {
	DSB      DSBProvider
	Plans    PlanProvider
	Calendar CalendarProvider
	Cache    CacheReader
	Health   HealthChecker
	Weather  StateProvider[*weather.Report]
	Transit  StateProvider[*transit.Board]
	Holidays StateProvider[[]holiday.View]
	Display  KioskDisplay
}

type Options struct {
	AppName     string
	CORSOrigins string
	Now         func() time.Time
}

type handlers struct {
	deps     Dependencies
	now      func() time.Time
	validate *validator.Validate
	log      *logrus.Entry
}

// New builds the fiber app with all routes and middlewares.
func New(deps Dependencies, opts Options, log *logrus.Entry) *fiber.App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "*"
	}
	log = log.WithField("component", "http")

	a := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	a.Use(recover.New())
	a.Use(requestid.New())
	a.Use(requestLogger(log))
	a.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))

	h := &handlers{deps: deps, now: opts.Now, validate: validator.New(), log: log}

	a.Get("/health", h.liveness)
	a.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := a.Group("/api")
	api.Get("/health", h.health)

	api.Get("/dsb/timetables", h.timetables)
	api.Get("/dsb/news", h.news)

	api.Get("/substitution/plans", h.plans)
	api.Get("/substitution/grouped", h.grouped)

	api.Get("/calendar/events", h.calendarEvents)

	mountPanel(api, "/weather", deps.Weather)
	mountPanel(api, "/transit", deps.Transit)
	mountPanel(api, "/holidays", deps.Holidays)
	api.Get("/lessons/current", h.currentLesson)

	api.Get("/kiosk/state", h.kioskState)
	api.Put("/kiosk/viewports/:name", h.reportViewport)
	api.Post("/kiosk/cycle", h.startCycle)

	return a
}

// ErrorHandler renders errors under /api as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	if strings.HasPrefix(c.Path(), "/api") {
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    code,
		})
	}
	return c.Status(code).SendString(err.Error())
}

func requestLogger(log *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		entry := log.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"duration":   time.Since(started).String(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		})
		if level := logger.RequestLevel(c.Path(), status); level == logrus.ErrorLevel {
			entry.WithError(err).Error("Request failed")
		} else {
			entry.Log(level, "Request handled")
		}
		return err
	}
}

func mountPanel[T any](r fiber.Router, path string, p StateProvider[T]) {
	if p == nil {
		return
	}
	r.Get(path, func(c *fiber.Ctx) error {
		return c.JSON(p.State())
	})
}

// sendRawJSON writes an already encoded JSON document.
func sendRawJSON(c *fiber.Ctx, body string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.SendString(body)
}
