// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/wneessen/promoter-route/internal/logger"
	"github.com/wneessen/promoter-route/internal/route"
)

const (
	eventLoading      = "loading"
	eventWaypoint     = "waypoint"
	eventReady        = "ready"
	eventFailed       = "failed"
	eventMissingInput = "missing_input"
	eventCanceled     = "canceled"

	streamReadLimit    = 1 << 16
	streamWriteTimeout = 10 * time.Second
	streamBuffer       = 64
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type streamEvent struct {
	Type       string            `json:"type"`
	Generation uint64            `json:"generation"`
	Index      int               `json:"index,omitempty"`
	Total      int               `json:"total,omitempty"`
	Waypoint   *route.Waypoint   `json:"waypoint,omitempty"`
	Route      *route.Route      `json:"route,omitempty"`
	Message    string            `json:"message,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// streamRoutes builds a route for every request received on the websocket and streams the
// progress back. A new request supersedes the running build. Closing the socket cancels it.
func (s *Service) streamRoutes(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(s.streams)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	events := make(chan streamEvent, streamBuffer)
	push := func(ev streamEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ev := range events {
			if ctx.Err() != nil {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Debug("failed to write stream event", logger.Err(err))
				cancel()
			}
		}
	}()

	tracker := route.NewTracker(s.assembler, func(snap route.Snapshot) {
		push(s.snapshotEvent(snap))
	})

	conn.SetReadLimit(streamReadLimit)
	var generation uint64
	for {
		req := new(routeRequest)
		if err = conn.ReadJSON(req); err != nil {
			break
		}
		if err = s.validator.Validate(req); err != nil {
			ev := streamEvent{Type: eventFailed, Generation: generation, Message: "invalid route request"}
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				ev.Fields = s.validator.Translate(validationErrs)
			}
			push(ev)
			continue
		}
		// Only this loop starts builds, so the next generation is known in advance. The progress
		// callback runs with the tracker lock held and must not query the tracker.
		next := tracker.Snapshot().Generation + 1
		generation = tracker.Start(ctx, req.toRequest(), func(index, total int, wp route.Waypoint) {
			push(streamEvent{Type: eventWaypoint, Generation: next, Index: index, Total: total, Waypoint: &wp})
		})
	}

	cancel()
	tracker.Cancel()
	tracker.Wait()
	close(events)
	<-writerDone
	return nil
}

func (s *Service) snapshotEvent(snap route.Snapshot) streamEvent {
	ev := streamEvent{Generation: snap.Generation}
	switch snap.State {
	case route.StateIdle:
		ev.Type = eventCanceled
	case route.StateLoading:
		ev.Type = eventLoading
	case route.StateReady:
		ev.Type = eventReady
		built := snap.Route
		ev.Route = &built
	case route.StateMissingInput:
		ev.Type = eventMissingInput
		ev.Message = s.presenter.MissingInput()
	default:
		ev.Type = eventFailed
		ev.Message = s.presenter.Message(snap.Err)
	}
	return ev
}
