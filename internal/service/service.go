// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires geocoding, route building and the HTTP API into a long-running service.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo/v4"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/wneessen/promoter-route/internal/address"
	"github.com/wneessen/promoter-route/internal/config"
	"github.com/wneessen/promoter-route/internal/database"
	"github.com/wneessen/promoter-route/internal/geocode"
	"github.com/wneessen/promoter-route/internal/logger"
	"github.com/wneessen/promoter-route/internal/metrics"
	"github.com/wneessen/promoter-route/internal/presenter"
	"github.com/wneessen/promoter-route/internal/ratelimit"
	"github.com/wneessen/promoter-route/internal/route"
	"github.com/wneessen/promoter-route/internal/store"
	"github.com/wneessen/promoter-route/internal/store/postgres"
)

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	metrics   *metrics.Metrics
	presenter *presenter.Presenter
	scheduler gocron.Scheduler
	server    *echo.Echo
	validator *requestValidator

	geocoder  geocode.Geocoder
	assembler *route.Assembler
	source    store.Source
	db        *sql.DB
	purge     func(context.Context) (int64, error)
	closers   []func() error

	// streams is canceled on shutdown to end open websocket streams
	streams      context.Context
	cancelStream context.CancelFunc
}

// New creates the service with the geocoder, cache and route source selected by conf.
func New(ctx context.Context, conf *config.Config, log *logger.Logger, loc *spreak.Localizer, lang language.Tag) (*Service, error) {
	service, err := newService(conf, log, presenter.New(loc, lang))
	if err != nil {
		return nil, err
	}
	if err = service.setup(ctx, lang); err != nil {
		if cerr := service.Close(); cerr != nil {
			log.Error("failed to close service resources", logger.Err(cerr))
		}
		return nil, err
	}
	return service, nil
}

func newService(conf *config.Config, log *logger.Logger, pres *presenter.Presenter) (*Service, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	streams, cancel := context.WithCancel(context.Background())
	service := &Service{
		config:       conf,
		logger:       log,
		metrics:      metrics.New(),
		presenter:    pres,
		scheduler:    scheduler,
		validator:    newRequestValidator(),
		streams:      streams,
		cancelStream: cancel,
	}
	service.server = service.newServer()
	return service, nil
}

func (s *Service) setup(ctx context.Context, lang language.Tag) error {
	if s.config.Database.URL != "" {
		db, err := database.Open(ctx, s.config.Database.URL)
		if err != nil {
			return err
		}
		s.db = db
		s.closers = append(s.closers, db.Close)
		source := postgres.New(db)
		if err = source.EnsureSchema(ctx); err != nil {
			return err
		}
		s.source = source
	}

	coder, err := s.selectGeocodeProvider(lang)
	if err != nil {
		return err
	}
	limiter, err := ratelimit.New(s.config.RateLimit.Mode, s.config.RateLimit.Interval)
	if err != nil {
		return err
	}
	var geocoder geocode.Geocoder = geocode.NewRetrier(coder, limiter, geocode.RetryPolicy{
		MaxRetries: *s.config.GeoCoder.MaxRetries,
		Delay:      *s.config.GeoCoder.RetryDelay,
	}, s.logger.Component("geocoder")).WithObserver(s.metrics)

	cache, err := s.selectCacheStore(ctx)
	if err != nil {
		return err
	}
	if cache != nil {
		geocoder = geocode.NewCachedGeocoder(geocoder, cache, s.config.Cache.HitTTL, s.config.Cache.MissTTL,
			s.logger.Component("geocode-cache")).WithObserver(s.metrics)
	}

	s.setGeocoder(geocoder)
	s.logger.Debug("geocoder initialized", slog.String("geocoder", geocoder.Name()),
		slog.String("cache", s.config.Cache.Backend), slog.String("ratelimit", s.config.RateLimit.Mode),
		slog.Duration("interval", limiter.Interval()))
	return nil
}

func (s *Service) setGeocoder(coder geocode.Geocoder) {
	s.geocoder = coder
	s.assembler = route.NewAssembler(coder, address.New(s.config.Country), s.logger.Component("route"), route.Options{
		Labels:         s.presenter.Labels(),
		SkipUnresolved: s.config.Route.SkipUnresolved,
		Observer:       s.metrics,
	})
}

// SetSource replaces the promoter route source.
func (s *Service) SetSource(source store.Source) {
	s.source = source
}

// BuildRoute builds a single route without going through the HTTP API.
func (s *Service) BuildRoute(ctx context.Context, req route.Request) (route.Route, error) {
	return s.assembler.Build(ctx, req)
}

// Presenter returns the presenter used for notifications.
func (s *Service) Presenter() *presenter.Presenter {
	return s.presenter
}

// Run serves the HTTP API until ctx is canceled and then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	if s.purge != nil {
		if err := s.createScheduledJob(ctx, s.config.Cache.PurgeInterval, s.purgeCache,
			"geocode_cache_purge_job"); err != nil {
			return err
		}
	}
	s.scheduler.Start()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("address", s.config.Server.Address))
		if err := s.server.Start(s.config.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errChan:
		if err != nil {
			runErr = fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	s.cancelStream()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to shut down HTTP server: %w", err))
	}
	if err := s.scheduler.Shutdown(); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to shut down scheduler: %w", err))
	}
	return errors.Join(runErr, s.Close())
}

// Close releases database and cache connections.
func (s *Service) Close() error {
	s.cancelStream()
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, s.closers[i]())
	}
	s.closers = nil
	return err
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// purgeCache removes expired entries from the geocoding cache.
func (s *Service) purgeCache(ctx context.Context) {
	removed, err := s.purge(ctx)
	if err != nil {
		s.logger.Error("failed to purge geocode cache", logger.Err(err))
		return
	}
	s.logger.Debug("geocode cache purged", slog.Int64("removed", removed))
}
