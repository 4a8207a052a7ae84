// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/wneessen/promoter-route/internal/geocode"
	"github.com/wneessen/promoter-route/internal/logger"
	"github.com/wneessen/promoter-route/internal/route"
	"github.com/wneessen/promoter-route/internal/store"
)

const (
	headerRequestID = echo.HeaderXRequestID
	ctxRequestID    = "request_id"
)

func (s *Service) newServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = s.validator
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(s.requestIDMiddleware)
	e.Use(s.observeMiddleware)

	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	v1 := e.Group("/api/v1")
	v1.POST("/routes", s.createRoute)
	v1.GET("/routes/stream", s.streamRoutes)
	v1.GET("/promoters/:id/route", s.promoterRoute)
	return e
}

// requestIDMiddleware keeps the caller's request ID or assigns a new one.
func (s *Service) requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Response().Header().Set(headerRequestID, id)
		return next(c)
	}
}

// observeMiddleware logs every request and records it in the HTTP metrics.
func (s *Service) observeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		duration := time.Since(start)
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		status := c.Response().Status
		s.metrics.ObserveHTTP(c.Request().Method, path, status, duration)
		s.logger.Debug("request served", slog.String("method", c.Request().Method), slog.String("path", path),
			slog.Int("status", status), slog.Duration("duration", duration),
			slog.Any("request_id", c.Get(ctxRequestID)))
		return nil
	}
}

// httpErrorHandler maps route and validation errors to status codes and localized messages.
func (s *Service) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := echo.Map{}
	var httpErr *echo.HTTPError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		body["error"] = httpErr.Message
	case errors.As(err, &validationErrs):
		code = http.StatusBadRequest
		body["error"] = s.validator.Translate(validationErrs)
	case errors.Is(err, store.ErrPromoterNotFound):
		code = http.StatusNotFound
		body["error"] = s.presenter.Message(err)
	case errors.Is(err, geocode.ErrInvalidInput), errors.Is(err, geocode.ErrAddressNotFound):
		code = http.StatusUnprocessableEntity
		body["error"] = s.presenter.Message(err)
	case errors.Is(err, geocode.ErrGeocodingService):
		code = http.StatusBadGateway
		body["error"] = s.presenter.Message(err)
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
		body["error"] = s.presenter.Message(err)
	case errors.Is(err, context.Canceled):
		code = http.StatusServiceUnavailable
		body["error"] = s.presenter.Message(err)
	default:
		s.logger.Error("request failed", logger.Err(err), slog.Any("request_id", c.Get(ctxRequestID)))
		body["error"] = http.StatusText(code)
	}
	if stopErr, ok := route.AsStopError(err); ok {
		body["label"] = stopErr.Label
		body["address"] = stopErr.Address
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		s.logger.Error("failed to send error response", logger.Err(err))
	}
}

func (s *Service) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
