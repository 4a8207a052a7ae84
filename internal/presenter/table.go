// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"

	"github.com/wneessen/promoter-route/internal/route"
)

const maxLabelWidth = 40

// Table writes the route as an aligned plain-text table with the distance of every leg.
func (p *Presenter) Table(w io.Writer, r route.Route) error {
	if r.MissingInput {
		_, err := fmt.Fprintln(w, p.MissingInput())
		return err
	}

	headers := []string{p.localizer.Get("Stop"), p.localizer.Get("Kind"), p.localizer.Get("Location"),
		p.localizer.Get("Leg")}
	rows := make([][]string, 0, len(r.Waypoints))
	legs := r.Legs()
	for i, wp := range r.Waypoints {
		label := runewidth.Truncate(wp.Label, maxLabelWidth, "…")
		if wp.Note != "" && wp.Note != wp.Label {
			label = fmt.Sprintf("%s (%s)", label, wp.Note)
		}
		leg := "-"
		if i > 0 {
			leg = formatDistance(legs[i-1])
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), p.kind(wp.Kind), label, leg})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, col := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(col))
		}
	}

	var sb strings.Builder
	writeRow(&sb, headers, widths)
	separator := make([]string, len(widths))
	for i, width := range widths {
		separator[i] = strings.Repeat("-", width)
	}
	writeRow(&sb, separator, widths)
	for _, row := range rows {
		writeRow(&sb, row, widths)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s: %s\n", p.localizer.Get("Total distance"), formatDistance(r.TotalDistance()))
	for _, skipped := range r.Skipped {
		fmt.Fprintf(&sb, "%s: %s (%s): %s\n", p.localizer.Get("Skipped"), skipped.Label, skipped.Address,
			skipped.Reason)
	}
	if !r.BuiltAt.IsZero() {
		fmt.Fprintf(&sb, "%s: %s\n", p.localizer.Get("Built at"), p.humanizer.FormatTime(r.BuiltAt,
			humanize.TimeFormat))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeRow(sb *strings.Builder, cols []string, widths []int) {
	for i, col := range cols {
		if i == len(cols)-1 {
			sb.WriteString(col)
			break
		}
		sb.WriteString(runewidth.FillRight(col, widths[i]))
		sb.WriteString("  ")
	}
	sb.WriteString("\n")
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}
