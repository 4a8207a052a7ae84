// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the promoter-route service and command line tool.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wneessen/promoter-route/internal/config"
	"github.com/wneessen/promoter-route/internal/i18n"
	"github.com/wneessen/promoter-route/internal/logger"
	"github.com/wneessen/promoter-route/internal/presenter"
	"github.com/wneessen/promoter-route/internal/service"
	"github.com/wneessen/promoter-route/internal/store/planfile"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	formatTable   = "table"
	formatJSON    = "json"
	formatGeoJSON = "geojson"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	// Environment overrides may come from a .env file in the working directory
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("failed to load .env file", logger.Err(err))
		os.Exit(1)
	}

	confPath := flag.String("config", "", "path to the config file")
	planPath := flag.String("plan", "", "build a single route from this plan file and exit")
	promoter := flag.String("promoter", "", "promoter of the plan file to build the route for")
	format := flag.String("format", formatTable, "output format of the plan route: table, json or geojson")
	flag.Parse()

	conf, err := loadConfig(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	logFormat, _ := logger.ParseFormat(conf.LogFormat)
	log = logger.NewWithFormat(conf.LogLevel, logFormat, os.Stderr)
	t, err := i18n.New(conf.Locale)
	if err != nil {
		log.Error("failed to initialize localizer", logger.Err(err))
		os.Exit(1)
	}

	// Initialize the service
	serv, err := service.New(ctx, conf, log, t, t.Language())
	if err != nil {
		log.Error("failed to initialize promoter-route service", logger.Err(err))
		os.Exit(1)
	}

	if *planPath != "" {
		code := buildPlan(ctx, serv, *planPath, *promoter, *format, os.Stdout)
		if err = serv.Close(); err != nil {
			log.Error("failed to close service resources", logger.Err(err))
		}
		os.Exit(code)
	}

	// Start the service loop
	log.Info(t.Get("starting promoter-route service"), slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	if err = serv.Run(ctx); err != nil {
		log.Error(t.Get("failed to start promoter-route service"), logger.Err(err))
	}
	log.Info(t.Get("shutting down promoter-route service"))
}

// buildPlan builds the route of a single promoter from a plan file and writes it to w. It returns
// the process exit code.
func buildPlan(ctx context.Context, serv *service.Service, path, promoter, format string, w io.Writer) int {
	plans, err := planfile.Load(path)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}
	req, err := plans.RouteRequest(ctx, promoter)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, serv.Presenter().Message(err))
		return 1
	}

	built, err := serv.BuildRoute(ctx, req)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, serv.Presenter().Message(err))
		return 1
	}
	if built.MissingInput {
		_, _ = fmt.Fprintln(os.Stderr, serv.Presenter().MissingInput())
		return 2
	}

	switch format {
	case formatJSON, formatGeoJSON:
		var out any = built
		if format == formatGeoJSON {
			out = presenter.GeoJSON(built)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(out)
	default:
		err = serv.Presenter().Table(w, built)
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// loadConfig reads the config from path, from the default location or from the environment only,
// in that order.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.NewFromFile(filepath.Dir(path), filepath.Base(path))
	}
	if dir, file := findConfigFile(); dir != "" && file != "" {
		return config.NewFromFile(dir, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "promoter-route", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
