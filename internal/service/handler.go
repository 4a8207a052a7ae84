// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wneessen/promoter-route/internal/presenter"
	"github.com/wneessen/promoter-route/internal/route"
)

const (
	formatJSON    = "json"
	formatGeoJSON = "geojson"
)

// routeRequest is the body of a route build request. A blank home address is valid and results
// in a route flagged as missing input.
type routeRequest struct {
	HomeAddress string        `json:"home_address" validate:"max=512"`
	HomeCity    string        `json:"home_city" validate:"max=256"`
	HomeLabel   string        `json:"home_label" validate:"max=256"`
	Stops       []stopRequest `json:"stops" validate:"max=200,dive"`
}

type stopRequest struct {
	Label   string `json:"label" validate:"required,notblank,max=256"`
	Address string `json:"address" validate:"max=512"`
	City    string `json:"city" validate:"max=256"`
}

func (r routeRequest) toRequest() route.Request {
	req := route.Request{
		HomeAddress: r.HomeAddress,
		HomeCity:    r.HomeCity,
		HomeLabel:   r.HomeLabel,
		Stops:       make([]route.Stop, 0, len(r.Stops)),
	}
	for _, stop := range r.Stops {
		req.Stops = append(req.Stops, route.Stop{Label: stop.Label, Address: stop.Address, City: stop.City})
	}
	return req
}

type routeResponse struct {
	Route    route.Route `json:"route"`
	Distance float64     `json:"distance_meters"`
	Message  string      `json:"message,omitempty"`
}

func (s *Service) createRoute(c echo.Context) error {
	req := new(routeRequest)
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return s.respondRoute(c, req.toRequest())
}

func (s *Service) promoterRoute(c echo.Context) error {
	if s.source == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "no promoter source configured")
	}
	req, err := s.source.RouteRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return s.respondRoute(c, req)
}

func (s *Service) respondRoute(c echo.Context, req route.Request) error {
	format := c.QueryParam("format")
	if format != "" && format != formatJSON && format != formatGeoJSON {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported format: "+format)
	}

	built, err := s.assembler.Build(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if format == formatGeoJSON {
		return c.JSON(http.StatusOK, presenter.GeoJSON(built))
	}

	resp := routeResponse{Route: built, Distance: built.TotalDistance()}
	if built.MissingInput {
		resp.Message = s.presenter.MissingInput()
	}
	return c.JSON(http.StatusOK, resp)
}
