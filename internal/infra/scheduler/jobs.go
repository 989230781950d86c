package scheduler

import (
	"context"
	"time"

	"school_dashboard/internal/app"
	"school_dashboard/internal/infra/config"
)

const (
	JobPlans    = "plans"
	JobCalendar = "calendar"
	JobWeather  = "weather"
	JobTransit  = "transit"
	JobHolidays = "holidays"

	initialPlanDelay = 10 * time.Second
)

// Services are the refreshable sources of the dashboard. Notifications is
// nil when the bot is disabled.
type Services struct {
	Plans         *app.PlanService
	Calendar      *app.CalendarService
	Weather       *app.WeatherService
	Transit       *app.TransitService
	Holidays      *app.HolidayService
	Notifications *app.NotificationService
}

// DashboardJobs builds one job per source using the configured cron specs.
func DashboardJobs(cfg *config.AppConfig, svc Services) []Job {
	jobs := []Job{
		{
			Name:         JobPlans,
			Spec:         cfg.CronSpecPlans,
			Timeout:      2 * time.Minute,
			InitialDelay: initialPlanDelay,
			Run: func(ctx context.Context) error {
				update, err := svc.Plans.Update(ctx)
				if err != nil {
					return err
				}
				if svc.Notifications == nil {
					return nil
				}
				_, err = svc.Notifications.NotifyPlanUpdate(ctx, update, time.Now())
				return err
			},
		},
		{Name: JobWeather, Spec: cfg.CronSpecWeather, Timeout: 30 * time.Second, Run: svc.Weather.Refresh},
		{Name: JobTransit, Spec: cfg.CronSpecTransit, Timeout: 20 * time.Second, Run: svc.Transit.Refresh},
		{Name: JobHolidays, Spec: cfg.CronSpecHolidays, Timeout: 30 * time.Second, Run: svc.Holidays.Refresh},
	}
	if cfg.CalendarICSURL != "" {
		jobs = append(jobs, Job{
			Name:    JobCalendar,
			Spec:    cfg.CronSpecCalendar,
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context) error {
				_, err := svc.Calendar.Refresh(ctx)
				return err
			},
		})
	}
	return jobs
}
