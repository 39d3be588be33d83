// Package match decides whether a suggestion may occupy a gap: a
// static location compatibility table plus a duration check.
package match

import "github.com/ksakurai/memoplan/internal/models"

// compatible maps a suggestion's location preference to the gap
// labels it accepts. An unlabeled gap (empty location) is accepted by
// every preference.
var compatible = map[models.LocationPreference]map[models.GapLocation]bool{
	models.PreferNearHome: {
		models.LocationHome:    true,
		models.LocationUnknown: true,
	},
	models.PreferNearWorkplace: {
		models.LocationWorkplace: true,
		models.LocationUnknown:   true,
	},
	models.PreferNone: {
		models.LocationHome:      true,
		models.LocationWorkplace: true,
		models.LocationOther:     true,
		models.LocationUnknown:   true,
	},
}

// Compatible reports whether a gap's location label satisfies the
// given preference. An empty preference behaves as no_preference.
func Compatible(pref models.LocationPreference, loc models.GapLocation) bool {
	if loc == "" {
		return true
	}
	if pref == "" {
		pref = models.PreferNone
	}
	allowed, ok := compatible[pref]
	if !ok {
		return false
	}
	return allowed[loc]
}

// CanFit reports whether the suggestion fits the gap in both duration
// and location.
func CanFit(s models.Suggestion, g models.Gap) bool {
	return g.Duration() >= s.DurationMin && Compatible(s.LocationPreference, g.Location)
}

// Filter returns the gaps the suggestion can occupy, preserving order.
func Filter(s models.Suggestion, gs []models.Gap) []models.Gap {
	var out []models.Gap
	for _, g := range gs {
		if CanFit(s, g) {
			out = append(out, g)
		}
	}
	return out
}

// FindFirst returns the first gap the suggestion can occupy.
func FindFirst(s models.Suggestion, gs []models.Gap) (models.Gap, bool) {
	for _, g := range gs {
		if CanFit(s, g) {
			return g, true
		}
	}
	return models.Gap{}, false
}
