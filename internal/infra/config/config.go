package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	AppVersion  string `validate:"required"`
	LogLevel    string `validate:"oneof=trace debug info warn warning error fatal panic"`
	Environment string `validate:"required"`
	HTTPAddr    string `validate:"required"`
	CORSOrigins string

	DSBUsername string `validate:"required"`
	DSBPassword string `validate:"required"`

	DatabaseDriver string `validate:"oneof=postgres sqlite"`
	DatabaseURL    string `validate:"required"`

	CalendarICSURL  string  `validate:"omitempty,url"`
	SchoolLatitude  float64 `validate:"latitude"`
	SchoolLongitude float64 `validate:"longitude"`
	HolidayRegion   string  `validate:"len=2"`

	// HolidayRegionName is stripped from holiday names ("herbstferien berlin").
	HolidayRegionName  string
	SchoolLocationName string

	TelegramToken   string
	AdminTelegramID int64

	CronSpecPlans    string `validate:"required"`
	CronSpecCalendar string `validate:"required"`
	CronSpecWeather  string `validate:"required"`
	CronSpecTransit  string `validate:"required"`
	CronSpecHolidays string `validate:"required"`

	KioskCycleInterval  time.Duration `validate:"gte=0"`
	KioskPanelInterval  time.Duration `validate:"gte=0"`
	KioskReloadInterval time.Duration `validate:"gte=0"`
	KioskPanelCount     int           `validate:"gte=0"`
}

// TelegramEnabled reports whether the notification bot should run.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{
		AppVersion:     getEnv("APP_VERSION", "dev"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:    strings.ToLower(getEnv("ENVIRONMENT", "development")),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:    getEnv("CORS_ALLOW_ORIGINS", "*"),
		DSBUsername:    os.Getenv("DSB_USERNAME"),
		DSBPassword:    os.Getenv("DSB_PASSWORD"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseURL:    getEnv("DATABASE_URL", "dashboard.db"),
		CalendarICSURL: SanitizeURL(os.Getenv("CALENDAR_ICS_URL")),
		HolidayRegion:  strings.ToUpper(getEnv("HOLIDAY_REGION", "BE")),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),

		HolidayRegionName:  getEnv("HOLIDAY_REGION_NAME", "berlin"),
		SchoolLocationName: getEnv("SCHOOL_LOCATION_NAME", "Berlin"),

		CronSpecPlans:    getEnv("CRON_SPEC_PLANS", "*/5 * * * *"),
		CronSpecCalendar: getEnv("CRON_SPEC_CALENDAR", "*/30 * * * *"),
		CronSpecWeather:  getEnv("CRON_SPEC_WEATHER", "*/10 * * * *"),
		CronSpecTransit:  getEnv("CRON_SPEC_TRANSIT", "@every 30s"),
		CronSpecHolidays: getEnv("CRON_SPEC_HOLIDAYS", "0 5 * * *"),
	}

	if cfg.DSBUsername == "" {
		return nil, fmt.Errorf("DSB_USERNAME is not set")
	}
	if cfg.DSBPassword == "" {
		return nil, fmt.Errorf("DSB_PASSWORD is not set")
	}

	var err error
	if cfg.SchoolLatitude, err = getFloat("SCHOOL_LATITUDE", 52.43432378391319); err != nil {
		return nil, err
	}
	if cfg.SchoolLongitude, err = getFloat("SCHOOL_LONGITUDE", 13.305375391277634); err != nil {
		return nil, err
	}

	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	if cfg.KioskCycleInterval, err = getDuration("KIOSK_CYCLE_INTERVAL", 3*time.Minute); err != nil {
		return nil, err
	}
	if cfg.KioskPanelInterval, err = getDuration("KIOSK_PANEL_INTERVAL", 32*time.Second); err != nil {
		return nil, err
	}
	if cfg.KioskReloadInterval, err = getDuration("KIOSK_RELOAD_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.KioskPanelCount, err = getInt("KIOSK_PANEL_COUNT", 2); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SanitizeURL trims whitespace and surrounding quotes, which often sneak in
// from .env files.
func SanitizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	for len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
