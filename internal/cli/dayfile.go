package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ksakurai/memoplan/internal/models"
	"github.com/ksakurai/memoplan/internal/utils"
)

// dayFile is the on-disk description of one day's free time and
// calendar, with HH:MM times.
type dayFile struct {
	Gaps []struct {
		ID       string             `json:"id"`
		Start    string             `json:"start"`
		End      string             `json:"end"`
		Location models.GapLocation `json:"location,omitempty"`
		Coord    *models.Coordinate `json:"coord,omitempty"`
	} `json:"gaps"`
	Events []struct {
		ID       string             `json:"id"`
		Title    string             `json:"title"`
		Start    string             `json:"start"`
		End      string             `json:"end"`
		Location models.GapLocation `json:"location,omitempty"`
	} `json:"events"`
}

// loadDayFile reads and converts a day file into engine inputs.
func loadDayFile(path string) ([]models.Gap, []models.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read day file: %w", err)
	}

	var df dayFile
	if err := json.Unmarshal(data, &df); err != nil {
		return nil, nil, fmt.Errorf("failed to parse day file: %w", err)
	}

	var gapsOut []models.Gap
	for i, g := range df.Gaps {
		start, err := utils.ParseTimeToMinutes(g.Start)
		if err != nil {
			return nil, nil, fmt.Errorf("gap %d: invalid start: %w", i, err)
		}
		end, err := utils.ParseTimeToMinutes(g.End)
		if err != nil {
			return nil, nil, fmt.Errorf("gap %d: invalid end: %w", i, err)
		}
		id := g.ID
		if id == "" {
			id = fmt.Sprintf("gap-%d", i)
		}
		gap, err := models.NewGap(id, start, end, g.Location)
		if err != nil {
			return nil, nil, fmt.Errorf("gap %d: %w", i, err)
		}
		gap.Coord = g.Coord
		gapsOut = append(gapsOut, gap)
	}

	var eventsOut []models.Event
	for i, ev := range df.Events {
		start, err := utils.ParseTimeToMinutes(ev.Start)
		if err != nil {
			return nil, nil, fmt.Errorf("event %d: invalid start: %w", i, err)
		}
		end, err := utils.ParseTimeToMinutes(ev.End)
		if err != nil {
			return nil, nil, fmt.Errorf("event %d: invalid end: %w", i, err)
		}
		id := ev.ID
		if id == "" {
			id = fmt.Sprintf("event-%d", i)
		}
		eventsOut = append(eventsOut, models.Event{
			ID: id, Title: ev.Title, Start: start, End: end, Location: ev.Location,
		})
	}

	return gapsOut, eventsOut, nil
}
