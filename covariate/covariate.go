// Package covariate generates time-varying features that are known ahead of time for both the
// conditioning window and the forecast horizon so they can be concatenated onto the series input.
package covariate

import (
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-probforecaster/mat"
)

const (
	secondsPerDay  = 86400.0
	secondsPerWeek = 7 * secondsPerDay
)

// Options configures which covariates are generated per time step. Features are ordered as
// daily fourier terms, weekly fourier terms, then one indicator per holiday.
type Options struct {
	DailyOrders  int `json:"daily_orders"`
	WeeklyOrders int `json:"weekly_orders"`

	// Holidays lists US holiday names, see LookupHoliday
	Holidays      []string      `json:"holidays"`
	HolidayBefore time.Duration `json:"holiday_before"`
	HolidayAfter  time.Duration `json:"holiday_after"`
}

// NewDefaultOptions returns covariates for daily and weekly seasonality with no holidays
func NewDefaultOptions() *Options {
	return &Options{
		DailyOrders:  2,
		WeeklyOrders: 1,
	}
}

// Validate checks the options for negative values and unknown holidays
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.DailyOrders < 0 || o.WeeklyOrders < 0 {
		return nil, ErrNegativeOrders
	}
	if o.HolidayBefore < 0 || o.HolidayAfter < 0 {
		return nil, ErrNegativeHolBuff
	}
	for _, name := range o.Holidays {
		if _, err := LookupHoliday(name); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// NumFeatures returns the number of covariates generated per time step
func (o *Options) NumFeatures() int {
	if o == nil {
		return 0
	}
	return 2*o.DailyOrders + 2*o.WeeklyOrders + len(o.Holidays)
}

// Labels names every covariate in generation order
func (o *Options) Labels() []string {
	labels := make([]string, 0, o.NumFeatures())
	for k := 1; k <= o.DailyOrders; k++ {
		labels = append(labels, fmt.Sprintf("daily_sin%d", k), fmt.Sprintf("daily_cos%d", k))
	}
	for k := 1; k <= o.WeeklyOrders; k++ {
		labels = append(labels, fmt.Sprintf("weekly_sin%d", k), fmt.Sprintf("weekly_cos%d", k))
	}
	for _, name := range o.Holidays {
		labels = append(labels, "holiday_"+name)
	}
	return labels
}

// Generate builds a batch × steps × NumFeatures covariate sequence. Each element of t holds the
// timestamps of one batch element and all must have the same length.
func Generate(t [][]time.Time, opt *Options) (*mat.Sequence, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	steps := 0
	if len(t) > 0 {
		steps = len(t[0])
	}
	nFeat := opt.NumFeatures()
	seq, err := mat.NewSequence(len(t), steps, nFeat, nil)
	if err != nil {
		return nil, err
	}
	if nFeat == 0 {
		return seq, nil
	}

	for b, ts := range t {
		if len(ts) != steps {
			return nil, fmt.Errorf("batch %d has %d steps instead of %d, %w", b, len(ts), steps, mat.ErrRowMismatch)
		}
		if steps == 0 {
			continue
		}

		events, err := opt.holidayEvents(ts[0], ts[steps-1])
		if err != nil {
			return nil, err
		}

		for i, ct := range ts {
			f := 0
			epoch := float64(ct.Unix())
			for k := 1; k <= opt.DailyOrders; k++ {
				rad := 2.0 * math.Pi * float64(k) * epoch / secondsPerDay
				seq.Set(b, i, f, math.Sin(rad))
				seq.Set(b, i, f+1, math.Cos(rad))
				f += 2
			}
			for k := 1; k <= opt.WeeklyOrders; k++ {
				rad := 2.0 * math.Pi * float64(k) * epoch / secondsPerWeek
				seq.Set(b, i, f, math.Sin(rad))
				seq.Set(b, i, f+1, math.Cos(rad))
				f += 2
			}
			for _, holEvents := range events {
				for _, ev := range holEvents {
					if ev.Contains(ct) {
						seq.Set(b, i, f, 1.0)
						break
					}
				}
				f++
			}
		}
	}
	return seq, nil
}

// holidayEvents returns the events of every configured holiday that may overlap [start, end]
func (o *Options) holidayEvents(start, end time.Time) ([][]Event, error) {
	events := make([][]Event, 0, len(o.Holidays))
	for _, name := range o.Holidays {
		hol, err := LookupHoliday(name)
		if err != nil {
			return nil, err
		}
		events = append(events, Holiday(
			hol,
			start.Add(-o.HolidayAfter-24*time.Hour),
			end.Add(o.HolidayBefore),
			o.HolidayBefore,
			o.HolidayAfter,
		))
	}
	return events, nil
}
