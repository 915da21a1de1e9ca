package timedataset

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameDataset(t *testing.T) {
	testData := map[string]struct {
		frame    *Frame
		col      string
		expected *TimeDataset
		err      error
	}{
		"nil frame": {
			frame: nil,
			col:   "kpi",
			err:   ErrNoTrainingData,
		},
		"missing column": {
			frame: NewFrame([]string{"2024-01-01 00:00:00"}, "kpi", []float64{1}),
			col:   "value",
			err:   ErrMissingColumn,
		},
		"malformed timestamp": {
			frame: NewFrame([]string{"2024-01-01T00:00:00Z"}, "kpi", []float64{1}),
			col:   "kpi",
			err:   ErrMalformedTime,
		},
		"non monotonic": {
			frame: NewFrame([]string{"2024-01-01 00:01:00", "2024-01-01 00:00:00"}, "kpi", []float64{1, 2}),
			col:   "kpi",
			err:   ErrNonMontonic,
		},
		"valid": {
			frame: NewFrame([]string{"2024-01-01 00:00:00", "2024-01-01 00:01:00"}, "kpi", []float64{1, 2}),
			col:   "kpi",
			expected: &TimeDataset{
				T: []time.Time{
					time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC),
				},
				Y: []float64{1, 2},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ds, err := td.frame.Dataset(td.col, nil)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, ds)
		})
	}
}

func TestNewFrameFromTime(t *testing.T) {
	tSeries := GenerateT(time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC), 2, time.Minute)
	f := NewFrameFromTime(tSeries, "kpi", []float64{1, 2})
	assert.Equal(t, []string{"2024-03-01 23:59:00", "2024-03-02 00:00:00"}, f.TS)
	assert.Equal(t, 2, f.Len())

	ds, err := f.Dataset("kpi", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, tSeries, ds.T)
}

func TestReadCSV(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected *Frame
		err      error
	}{
		"empty": {
			input: "",
			err:   ErrNoHeader,
		},
		"missing ts column": {
			input: "time,kpi\n",
			err:   ErrNoTimeColumn,
		},
		"header only": {
			input: "ts,kpi\n",
			err:   ErrNoTrainingData,
		},
		"multiple columns": {
			input: "ts,kpi,other\n2024-01-01 00:00:00,1.5,2\n2024-01-01 00:01:00,2.5,3\n",
			expected: &Frame{
				TS: []string{"2024-01-01 00:00:00", "2024-01-01 00:01:00"},
				Columns: map[string][]float64{
					"kpi":   {1.5, 2.5},
					"other": {2, 3},
				},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := ReadCSV(strings.NewReader(td.input))
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, f)
		})
	}
}

func TestReadCSVEmptyCell(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("ts,kpi\n2024-01-01 00:00:00,\n"))
	require.NoError(t, err)
	require.Len(t, f.Columns["kpi"], 1)
	assert.True(t, math.IsNaN(f.Columns["kpi"][0]))
}
