package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"school_dashboard/internal/app"
	"school_dashboard/internal/domain/cache"
	"school_dashboard/internal/domain/schedule"
	"school_dashboard/internal/domain/substitution"
	"school_dashboard/internal/kiosk"

	"github.com/gofiber/fiber/v2"
)

func (h *handlers) liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    app.StatusUp,
		"timestamp": h.now().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (h *handlers) health(c *fiber.Ctx) error {
	report := h.deps.Health.Check(c.UserContext())
	if report.Status != app.StatusUp {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// cached returns the stored response of key. Read errors count as a miss.
func (h *handlers) cached(c *fiber.Ctx, key string) (string, bool) {
	body, ok, err := h.deps.Cache.RawJSON(c.UserContext(), key)
	if err != nil {
		h.log.WithError(err).WithField("key", key).Warn("Failed to read cached response")
		return "", false
	}
	return body, ok
}

func (h *handlers) timetables(c *fiber.Ctx) error {
	tables, err := h.deps.DSB.TimeTables(c.UserContext())
	if err != nil {
		h.log.WithError(err).Warn("Failed to fetch timetables")
		if body, ok := h.cached(c, cache.KeyTimeTables); ok {
			return sendRawJSON(c, body)
		}
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Error fetching timetables: %v", err))
	}
	return c.JSON(tables)
}

func (h *handlers) news(c *fiber.Ctx) error {
	news, err := h.deps.DSB.News(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Error fetching news: %v", err))
	}
	return c.JSON(news)
}

func (h *handlers) plans(c *fiber.Ctx) error {
	plans, err := h.deps.Plans.Plans(c.UserContext())
	if err != nil {
		h.log.WithError(err).Warn("Failed to load substitution plans")
	}
	if err != nil || len(plans) == 0 {
		if body, ok := h.cached(c, cache.KeyPlans); ok {
			return sendRawJSON(c, body)
		}
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Error fetching substitution plans: %v", err))
	}
	if plans == nil {
		plans = make([]*substitution.Plan, 0)
	}
	return c.JSON(plans)
}

func (h *handlers) grouped(c *fiber.Ctx) error {
	view, err := h.deps.Plans.Grouped(c.UserContext(), h.now())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Error grouping substitution plans: %v", err))
	}
	return c.JSON(view)
}

func (h *handlers) calendarEvents(c *fiber.Ctx) error {
	limit := app.DefaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, app.ErrInvalidLimit.Error())
		}
		limit = n
	}

	events, err := h.deps.Calendar.Upcoming(c.UserContext(), limit)
	switch {
	case errors.Is(err, app.ErrInvalidLimit):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrCalendarNotConfigured):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Error fetching calendar events: %v", err))
	}
	return c.JSON(events)
}

func (h *handlers) currentLesson(c *fiber.Ctx) error {
	return c.JSON(schedule.Current(h.now()))
}

func (h *handlers) kioskState(c *fiber.Ctx) error {
	return c.JSON(h.deps.Display.Snapshot())
}

type viewportReport struct {
	ContentHeight  float64 `json:"contentHeight" validate:"gte=0"`
	ViewportHeight float64 `json:"viewportHeight" validate:"gte=0"`
}

func (h *handlers) reportViewport(c *fiber.Ctx) error {
	var req viewportReport
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	changed, err := h.deps.Display.ReportViewport(c.Params("name"), req.ContentHeight, req.ViewportHeight)
	if err != nil {
		if errors.Is(err, kiosk.ErrUnknownViewport) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "changed": changed})
}

func (h *handlers) startCycle(c *fiber.Ctx) error {
	if err := h.deps.Display.StartCycle(); err != nil {
		if errors.Is(err, kiosk.ErrNotMounted) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(h.deps.Display.Snapshot().Rotation)
}
