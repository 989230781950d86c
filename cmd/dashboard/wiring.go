package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"school_dashboard/internal/app"
	"school_dashboard/internal/infra/config"
	idb "school_dashboard/internal/infra/database"
	"school_dashboard/internal/infra/dsb"
	"school_dashboard/internal/infra/ferien"
	"school_dashboard/internal/infra/icalendar"
	"school_dashboard/internal/infra/logger"
	"school_dashboard/internal/infra/openmeteo"
	"school_dashboard/internal/infra/planparser"
	"school_dashboard/internal/infra/scheduler"
	"school_dashboard/internal/infra/transportrest"
	"school_dashboard/internal/kiosk"
)

// dashboard holds every wired component of a running instance.
type dashboard struct {
	cfg *config.AppConfig
	db  *sql.DB

	subscribers   *idb.SQLSubscriberRepository
	cache         *app.CacheService
	dsb           *app.DSBService
	plans         *app.PlanService
	calendar      *app.CalendarService
	weather       *app.WeatherService
	transit       *app.TransitService
	holidays      *app.HolidayService
	health        *app.HealthService
	subscriptions *app.SubscriptionService
	display       *kiosk.Display
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	return cfg, nil
}

func openDatabase(cfg *config.AppConfig) (*sql.DB, error) {
	db, err := idb.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	logger.Log.WithField("driver", cfg.DatabaseDriver).Info("Database connection established")
	return db, nil
}

func wire(cfg *config.AppConfig, db *sql.DB) *dashboard {
	log := logger.Component("main")
	httpClient := &http.Client{Timeout: 20 * time.Second}

	cacheSvc := app.NewCacheService(idb.NewSQLCacheRepository(db), logger.Base())
	dsbSvc := app.NewDSBService(
		dsb.NewClient(cfg.DSBUsername, cfg.DSBPassword, logger.Component("dsb"), dsb.WithHTTPClient(httpClient)),
		cacheSvc, logger.Base(),
	)

	d := &dashboard{
		cfg:   cfg,
		db:    db,
		cache: cacheSvc,
		dsb:   dsbSvc,
		plans: app.NewPlanService(
			dsbSvc,
			planparser.New(httpClient, logger.Component("planparser")),
			idb.NewSQLDocumentRepository(db),
			cacheSvc,
			logger.Base(),
		),
		calendar: app.NewCalendarService(cfg.CalendarICSURL, icalendar.NewFeed(httpClient), cacheSvc, logger.Base()),
		weather: app.NewWeatherService(
			openmeteo.NewClient(openmeteo.DefaultBaseURL, httpClient),
			cfg.SchoolLatitude, cfg.SchoolLongitude, cfg.SchoolLocationName,
			cacheSvc, logger.Base(),
		),
		transit: app.NewTransitService(
			transportrest.NewClient(transportrest.DefaultBaseURL, httpClient),
			cfg.SchoolLatitude, cfg.SchoolLongitude,
			cacheSvc, logger.Base(),
		),
		holidays: app.NewHolidayService(
			ferien.NewClient(ferien.DefaultBaseURL, httpClient),
			ferien.Bundled,
			cfg.HolidayRegion, cfg.HolidayRegionName,
			cacheSvc, logger.Base(),
		),
		health:      app.NewHealthService(db, cacheSvc, cfg.AppVersion),
		subscribers: idb.NewSQLSubscriberRepository(db),
	}
	d.subscriptions = app.NewSubscriptionService(d.subscribers, cfg.AdminTelegramID)

	displayCfg := kiosk.DefaultDisplayConfig()
	displayCfg.ReloadInterval = cfg.KioskReloadInterval
	displayCfg.Rotation.CycleInterval = cfg.KioskCycleInterval
	displayCfg.Rotation.PanelInterval = cfg.KioskPanelInterval
	displayCfg.Rotation.PanelCount = cfg.KioskPanelCount
	d.display = kiosk.NewDisplay(kiosk.SystemClock, displayCfg, logger.Base())

	log.Info("Services initialized")
	return d
}

// jobs returns the polling jobs; notifications may be nil.
func (d *dashboard) jobs(notifications *app.NotificationService) []scheduler.Job {
	return scheduler.DashboardJobs(d.cfg, scheduler.Services{
		Plans:         d.plans,
		Calendar:      d.calendar,
		Weather:       d.weather,
		Transit:       d.transit,
		Holidays:      d.holidays,
		Notifications: notifications,
	})
}
