package covariate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd   = errors.New("event start time is after end time")
	ErrUnsetTime       = errors.New("unset event start or end time")
	ErrNoEventName     = errors.New("no event name")
	ErrUnknownHoliday  = errors.New("unknown holiday")
	ErrNegativeOrders  = errors.New("negative fourier orders")
	ErrNegativeHolBuff = errors.New("negative holiday buffer")
)

// holidays are the supported US holidays keyed by their option name
var holidays = map[string]*cal.Holiday{
	"new_year":     us.NewYear,
	"mlk":          us.MlkDay,
	"presidents":   us.PresidentsDay,
	"memorial":     us.MemorialDay,
	"independence": us.IndependenceDay,
	"labor":        us.LaborDay,
	"columbus":     us.ColumbusDay,
	"veterans":     us.VeteransDay,
	"thanksgiving": us.ThanksgivingDay,
	"christmas":    us.ChristmasDay,
}

// LookupHoliday returns the calendar holiday registered under name
func LookupHoliday(name string) (*cal.Holiday, error) {
	hol, exists := holidays[name]
	if !exists {
		return nil, fmt.Errorf("%s, %w", name, ErrUnknownHoliday)
	}
	return hol, nil
}

// Event is a time span flagged by an indicator covariate
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// Contains reports if t falls within [Start, End)
func (e *Event) Contains(t time.Time) bool {
	return !t.Before(e.Start) && t.Before(e.End)
}

// Holiday returns one event per observed occurrence of the holiday between start and end. The
// event spans the observed day in the location of start, widened by durBefore and durAfter.
func Holiday(hol *cal.Holiday, start, end time.Time, durBefore, durAfter time.Duration) []Event {
	startLoc := start.Location()

	events := []Event{}
	for i := start.Year(); i <= end.Year(); i++ {
		_, observed := hol.Calc(i)
		_, offset := observed.Zone()
		_, startOffset := start.Zone()

		observed = observed.Add(time.Duration(offset) * time.Second).In(startLoc).Add(time.Duration(-startOffset) * time.Second)

		if (observed.After(start) || observed.Equal(start)) && (observed.Before(end) || observed.Equal(end)) {
			events = append(events, Event{
				Name:  strings.ReplaceAll(fmt.Sprintf("%s_%d", hol.Name, i), " ", "_"),
				Start: observed.Add(-durBefore),
				End:   observed.Add(24 * time.Hour).Add(durAfter),
			})
		}
	}
	return events
}
