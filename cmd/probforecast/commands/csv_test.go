package commands

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		input     string
		expectedT []time.Time
		expectedY []float64
		err       error
	}{
		"rfc3339 with header": {
			input:     "time,value\n2024-01-01T00:00:00Z,1.5\n2024-01-01T01:00:00Z,2.5\n",
			expectedT: []time.Time{start, start.Add(time.Hour)},
			expectedY: []float64{1.5, 2.5},
		},
		"unix seconds": {
			input:     "1704067200,3\n1704067260, 4\n",
			expectedT: []time.Time{start, start.Add(time.Minute)},
			expectedY: []float64{3, 4},
		},
		"missing value": {
			input:     "1704067200,\n1704067260,4\n",
			expectedT: []time.Time{start, start.Add(time.Minute)},
			expectedY: []float64{math.NaN(), 4},
		},
		"bad timestamp": {
			input: "1704067200,1\nyesterday,2\n",
			err:   ErrCSVTimestamp,
		},
		"too few columns": {
			input: "1704067200\n",
			err:   ErrCSVColumns,
		},
		"header only": {
			input: "time,value\n",
			err:   ErrCSVNoRows,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ts, y, err := readSeries(strings.NewReader(td.input))
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			require.Len(t, ts, len(td.expectedT))
			for i := range ts {
				assert.True(t, td.expectedT[i].Equal(ts[i]))
				if math.IsNaN(td.expectedY[i]) {
					assert.True(t, math.IsNaN(y[i]))
					continue
				}
				assert.Equal(t, td.expectedY[i], y[i])
			}
		})
	}
}
