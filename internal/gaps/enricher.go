// Package gaps assigns a location label to each free-time window by
// inspecting the neighboring calendar events, with a time-of-day
// fallback. Input events are never mutated; enrichment returns new
// Gap values.
package gaps

import (
	"github.com/ksakurai/memoplan/internal/models"
)

// Config holds the time-of-day fallback thresholds, in minutes from
// midnight.
type Config struct {
	// MorningEnd: gaps starting before this are assumed to be at home.
	MorningEnd int
	// EveningStart: gaps starting at or after this are assumed to be
	// at home.
	EveningStart int
}

// DefaultConfig returns the standard fallback thresholds (09:00/18:00).
func DefaultConfig() Config {
	return Config{MorningEnd: 9 * 60, EveningStart: 18 * 60}
}

// Enrich labels every gap, preserving input order. Gaps that already
// carry a label keep it.
func Enrich(gs []models.Gap, events []models.Event, cfg Config) []models.Gap {
	out := make([]models.Gap, len(gs))
	for i, g := range gs {
		if g.Location == "" {
			g.Location = inferLocation(g, events, cfg)
		}
		out[i] = g
	}
	return out
}

// inferLocation applies the neighbor rules in order: latest event
// ending at-or-before the gap start, then earliest event starting
// at-or-after the gap end, then the time-of-day fallback. A tie at
// the decisive boundary time is ambiguous and falls through, as does
// a neighbor without a known location.
func inferLocation(g models.Gap, events []models.Event, cfg Config) models.GapLocation {
	if loc, ok := precedingLocation(g, events); ok {
		return loc
	}
	if loc, ok := followingLocation(g, events); ok {
		return loc
	}
	if g.Start < cfg.MorningEnd || g.Start >= cfg.EveningStart {
		return models.LocationHome
	}
	return models.LocationUnknown
}

func precedingLocation(g models.Gap, events []models.Event) (models.GapLocation, bool) {
	best := -1
	var loc models.GapLocation
	ambiguous := false
	for _, ev := range events {
		if ev.End > g.Start {
			continue
		}
		switch {
		case ev.End > best:
			best = ev.End
			loc = ev.Location
			ambiguous = false
		case ev.End == best:
			ambiguous = true
		}
	}
	if best < 0 || ambiguous || !known(loc) {
		return "", false
	}
	return loc, true
}

func followingLocation(g models.Gap, events []models.Event) (models.GapLocation, bool) {
	best := -1
	var loc models.GapLocation
	ambiguous := false
	for _, ev := range events {
		if ev.Start < g.End {
			continue
		}
		switch {
		case best < 0 || ev.Start < best:
			best = ev.Start
			loc = ev.Location
			ambiguous = false
		case ev.Start == best:
			ambiguous = true
		}
	}
	if best < 0 || ambiguous || !known(loc) {
		return "", false
	}
	return loc, true
}

func known(loc models.GapLocation) bool {
	return loc != "" && loc != models.LocationUnknown
}
