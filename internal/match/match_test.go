package match

import (
	"testing"

	"github.com/ksakurai/memoplan/internal/models"
)

func TestCompatible(t *testing.T) {
	tests := []struct {
		pref models.LocationPreference
		loc  models.GapLocation
		want bool
	}{
		{models.PreferNearHome, models.LocationHome, true},
		{models.PreferNearHome, models.LocationUnknown, true},
		{models.PreferNearHome, "", true},
		{models.PreferNearHome, models.LocationWorkplace, false},
		{models.PreferNearHome, models.LocationOther, false},

		{models.PreferNearWorkplace, models.LocationWorkplace, true},
		{models.PreferNearWorkplace, models.LocationUnknown, true},
		{models.PreferNearWorkplace, "", true},
		{models.PreferNearWorkplace, models.LocationHome, false},

		{models.PreferNone, models.LocationHome, true},
		{models.PreferNone, models.LocationWorkplace, true},
		{models.PreferNone, models.LocationOther, true},
		{models.PreferNone, models.LocationUnknown, true},
		{models.PreferNone, "", true},

		// unset preference behaves as no_preference
		{"", models.LocationOther, true},
	}

	for _, tt := range tests {
		if got := Compatible(tt.pref, tt.loc); got != tt.want {
			t.Errorf("Compatible(%q, %q) = %v, want %v", tt.pref, tt.loc, got, tt.want)
		}
	}
}

func TestCanFit(t *testing.T) {
	g, err := models.NewGap("g1", 9*60, 10*60, models.LocationHome)
	if err != nil {
		t.Fatalf("NewGap failed: %v", err)
	}

	fits := models.Suggestion{ID: "s1", DurationMin: 45, LocationPreference: models.PreferNearHome}
	if !CanFit(fits, g) {
		t.Errorf("45min near_home suggestion should fit a 60min home gap")
	}

	tooLong := models.Suggestion{ID: "s2", DurationMin: 90, LocationPreference: models.PreferNearHome}
	if CanFit(tooLong, g) {
		t.Errorf("90min suggestion must not fit a 60min gap")
	}

	wrongPlace := models.Suggestion{ID: "s3", DurationMin: 30, LocationPreference: models.PreferNearWorkplace}
	if CanFit(wrongPlace, g) {
		t.Errorf("near_workplace suggestion must not fit a home gap")
	}
}

func TestFilterAndFindFirst(t *testing.T) {
	mk := func(id string, start, end int, loc models.GapLocation) models.Gap {
		g, err := models.NewGap(id, start, end, loc)
		if err != nil {
			t.Fatalf("NewGap failed: %v", err)
		}
		return g
	}

	gapsIn := []models.Gap{
		mk("work", 9*60, 10*60, models.LocationWorkplace),
		mk("short", 12*60, 12*60+20, models.LocationHome),
		mk("home", 19*60, 21*60, models.LocationHome),
	}

	s := models.Suggestion{ID: "s1", DurationMin: 30, LocationPreference: models.PreferNearHome}

	got := Filter(s, gapsIn)
	if len(got) != 1 || got[0].ID != "home" {
		t.Fatalf("Filter = %v, want only the evening home gap", got)
	}

	first, ok := FindFirst(s, gapsIn)
	if !ok || first.ID != "home" {
		t.Errorf("FindFirst = %v/%v, want the evening home gap", first.ID, ok)
	}

	none := models.Suggestion{ID: "s2", DurationMin: 300, LocationPreference: models.PreferNone}
	if _, ok := FindFirst(none, gapsIn); ok {
		t.Errorf("FindFirst should report no gap for an oversized suggestion")
	}
}
