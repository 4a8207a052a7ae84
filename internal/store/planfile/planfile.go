// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package planfile reads route plans of one or more promoters from a YAML or JSON file.
package planfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wneessen/promoter-route/internal/route"
	"github.com/wneessen/promoter-route/internal/store"
)

// Plan is the route plan of a single promoter.
type Plan struct {
	Promoter string       `yaml:"promoter"`
	Home     Home         `yaml:"home"`
	Stores   []route.Stop `yaml:"stores"`
}

// Home is the promoter's residence.
type Home struct {
	Label   string `yaml:"label"`
	Address string `yaml:"address"`
	City    string `yaml:"city"`
}

// Request converts the plan into a route request.
func (p Plan) Request() route.Request {
	return route.Request{
		HomeAddress: p.Home.Address,
		HomeCity:    p.Home.City,
		HomeLabel:   p.Home.Label,
		Stops:       p.Stores,
	}
}

// File holds all plans of a plan file.
type File struct {
	Plans []Plan `yaml:"plans"`
}

// Load reads the plan file at path. JSON is a subset of YAML, so both formats are parsed by the
// YAML decoder.
func Load(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported plan file format: %s", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	file := new(File)
	if err = yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plan file %s contains no plans", path)
	}
	for i, plan := range file.Plans {
		if strings.TrimSpace(plan.Promoter) == "" && len(file.Plans) > 1 {
			return nil, fmt.Errorf("plan %d has no promoter", i+1)
		}
	}
	return file, nil
}

// RouteRequest returns the request for promoterID. An empty ID selects the first plan.
func (f *File) RouteRequest(_ context.Context, promoterID string) (route.Request, error) {
	if promoterID == "" {
		return f.Plans[0].Request(), nil
	}
	for _, plan := range f.Plans {
		if plan.Promoter == promoterID {
			return plan.Request(), nil
		}
	}
	return route.Request{}, fmt.Errorf("%w: %s", store.ErrPromoterNotFound, promoterID)
}

var _ store.Source = (*File)(nil)
