package models

import "fmt"

// GapLocation is the inferred or known location label of a free-time
// window. The empty string means no label is available.
type GapLocation string

const (
	LocationHome      GapLocation = "home"
	LocationWorkplace GapLocation = "workplace"
	LocationOther     GapLocation = "other"
	LocationUnknown   GapLocation = "unknown"
)

// Gap is a contiguous free-time window on the calendar. Start and End
// are minutes from midnight; a Gap is immutable for the duration of a
// computation.
type Gap struct {
	ID       string      `json:"id"`
	Start    int         `json:"start"`
	End      int         `json:"end"`
	Location GapLocation `json:"location,omitempty"`
	Coord    *Coordinate `json:"coord,omitempty"`
}

// NewGap constructs a Gap, rejecting non-positive durations up front.
func NewGap(id string, start, end int, location GapLocation) (Gap, error) {
	if end <= start {
		return Gap{}, fmt.Errorf("gap %q duration must be positive (start %d, end %d)", id, start, end)
	}
	return Gap{ID: id, Start: start, End: end, Location: location}, nil
}

// Duration returns the gap length in minutes.
func (g Gap) Duration() int {
	return g.End - g.Start
}

// Event is a fixed calendar event neighboring the day's gaps. The gap
// enricher reads events; nothing in this core mutates them.
type Event struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Start    int         `json:"start"`
	End      int         `json:"end"`
	Location GapLocation `json:"location,omitempty"`
}
