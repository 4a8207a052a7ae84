// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package i18n provides the translations for marker labels, notifications and log messages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/Xuanwo/go-locale"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"
)

//go:embed locale/*
var locales embed.FS

// Supported lists the languages with embedded translations. English is the source language.
var Supported = []language.Tag{language.English, language.Portuguese}

var matcher = language.NewMatcher(Supported)

// Match returns the supported language closest to loc, e.g. Portuguese for "pt-BR". An empty loc
// is detected from the environment.
func Match(loc string) language.Tag {
	tag := language.Make(loc)
	if loc == "" {
		detected, err := locale.Detect()
		if err != nil {
			return language.English
		}
		tag = detected
	}
	_, idx, _ := matcher.Match(tag)
	return Supported[idx]
}

// New returns a Localizer for the supported language closest to loc.
func New(loc string) (*spreak.Localizer, error) {
	tag := Match(loc)
	localeFS, err := fs.Sub(locales, "locale")
	if err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}

	bundle, err := spreak.NewBundle(
		spreak.WithSourceLanguage(language.English),
		spreak.WithFallbackLanguage(language.English),
		spreak.WithDomainFs("", localeFS),
		spreak.WithLanguage(language.Portuguese),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create i18n bundle: %w", err)
	}
	return spreak.NewLocalizer(bundle, tag), nil
}
