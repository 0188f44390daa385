package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrCSVColumns   = errors.New("expected time and value columns")
	ErrCSVTimestamp = errors.New("unable to parse timestamp")
	ErrCSVNoRows    = errors.New("no rows in csv")
)

// readSeries parses a two column csv of timestamp and value. Timestamps are RFC3339 or unix
// seconds and a leading header row is skipped. Empty values are treated as missing.
func readSeries(r io.Reader) ([]time.Time, []float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var t []time.Time
	var y []float64
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("unable to read csv row %d, %w", row, err)
		}
		if len(record) < 2 {
			return nil, nil, fmt.Errorf("row %d has %d columns, %w", row, len(record), ErrCSVColumns)
		}

		ct, err := parseTimestamp(record[0])
		if err != nil {
			if row == 0 {
				continue
			}
			return nil, nil, fmt.Errorf("row %d, %w", row, err)
		}
		val, err := parseValue(record[1])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d, %w", row, err)
		}
		t = append(t, ct)
		y = append(y, val)
	}
	if len(t) == 0 {
		return nil, nil, ErrCSVNoRows
	}
	return t, y, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ct, err := time.Parse(time.RFC3339, s); err == nil {
		return ct, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrCSVTimestamp)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
