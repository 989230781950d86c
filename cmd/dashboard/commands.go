package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"school_dashboard/internal/app"
	"school_dashboard/internal/domain/substitution"
	"school_dashboard/internal/infra/httpapi"
	"school_dashboard/internal/infra/logger"
	"school_dashboard/internal/infra/scheduler"
	"school_dashboard/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "School kiosk dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newRefreshCmd(),
		newClassifyCmd(),
		newMigrateCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the polling scheduler and the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Component("main")
	log.WithFields(logrus.Fields{"version": cfg.AppVersion, "environment": cfg.Environment}).Info("School dashboard starting...")

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	d := wire(cfg, db)
	restoreCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	for name, restore := range map[string]func(context.Context) error{
		"weather":  d.weather.Restore,
		"transit":  d.transit.Restore,
		"holidays": d.holidays.Restore,
	} {
		if err := restore(restoreCtx); err != nil {
			log.WithError(err).WithField("panel", name).Warn("Could not restore panel from cache")
		}
	}
	cancel()

	botCtx, stopBot := context.WithCancel(ctx)
	defer stopBot()

	var notifications *app.NotificationService
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, logger.Component("telegram"))
		if err != nil {
			return err
		}
		notifications = app.NewNotificationService(
			d.subscribers, telegram.NewTelebotAdapter(bot), logger.Base(),
		)
		telegram.NewCommandHandlers(d.subscriptions, d.plans, logger.Base()).Register(botCtx, bot)
		go bot.Start()
		defer bot.Stop()
		log.Info("Telegram bot started")
	} else {
		log.Info("TELEGRAM_TOKEN not set, notifications disabled")
	}

	polling := scheduler.NewPollingScheduler(logger.Base(), d.jobs(notifications)...)
	if err := polling.Start(); err != nil {
		return err
	}
	defer polling.Stop()

	d.display.Mount()
	defer d.display.Unmount()

	server := httpapi.New(httpapi.Dependencies{
		DSB:      d.dsb,
		Plans:    d.plans,
		Calendar: d.calendar,
		Cache:    d.cache,
		Health:   d.health,
		Weather:  d.weather,
		Transit:  d.transit,
		Holidays: d.holidays,
		Display:  d.display,
	}, httpapi.Options{AppName: "school-dashboard " + cfg.AppVersion, CORSOrigins: cfg.CORSOrigins}, logger.Base())

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		serverErr <- server.Listen(cfg.HTTPAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down application...")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	log.Info("Application shut down gracefully.")
	return nil
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "refresh [source...]",
		Short:     "Poll data sources once and store the results",
		ValidArgs: []string{scheduler.JobPlans, scheduler.JobCalendar, scheduler.JobWeather, scheduler.JobTransit, scheduler.JobHolidays},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			jobs := wire(cfg, db).jobs(nil)
			polling := scheduler.NewPollingScheduler(logger.Base(), jobs...)
			if len(args) == 0 {
				for _, j := range jobs {
					args = append(args, j.Name)
				}
			}

			var failed []string
			for _, name := range args {
				if err := polling.RunNow(name); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%-9s FAILED: %v\n", name, err)
					failed = append(failed, name)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s ok\n", name)
			}
			if len(failed) > 0 {
				return fmt.Errorf("refresh failed for %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <classes>...",
		Short: "Show which grade buckets a class text falls into",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, classes := range args {
				grades := substitution.ExtractGrades(classes).Sorted()
				if len(grades) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%q: unclassified\n", classes)
					continue
				}
				names := make([]string, 0, len(grades))
				for _, g := range grades {
					names = append(names, g.String())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q: %s\n", classes, strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.DatabaseDriver)
			return nil
		},
	}
}
