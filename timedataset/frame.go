package timedataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// TimeLayout is the fixed date-time pattern of every timestamp in a Frame
const TimeLayout = "2006-01-02 15:04:05"

var (
	ErrMissingColumn = errors.New("column not found in frame")
	ErrMalformedTime = errors.New("timestamp does not match layout")
	ErrNoHeader      = errors.New("no header row")
	ErrNoTimeColumn  = errors.New("first header column must be ts")
)

// Frame is tabular training input of formatted timestamps and one or more named numeric
// columns of the same length
type Frame struct {
	TS      []string
	Columns map[string][]float64
}

// NewFrame creates a frame from timestamps and a single named column
func NewFrame(ts []string, col string, values []float64) *Frame {
	tsCopy := make([]string, len(ts))
	copy(tsCopy, ts)
	valCopy := make([]float64, len(values))
	copy(valCopy, values)
	return &Frame{
		TS:      tsCopy,
		Columns: map[string][]float64{col: valCopy},
	}
}

// NewFrameFromTime formats the time points with TimeLayout and creates a frame
func NewFrameFromTime(t []time.Time, col string, values []float64) *Frame {
	ts := make([]string, 0, len(t))
	for _, tPnt := range t {
		ts = append(ts, tPnt.Format(TimeLayout))
	}
	return NewFrame(ts, col, values)
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.TS)
}

// Dataset parses the timestamps in loc and pairs them with the named column
func (f *Frame) Dataset(col string, loc *time.Location) (*TimeDataset, error) {
	if f == nil || len(f.TS) == 0 {
		return nil, ErrNoTrainingData
	}
	values, exists := f.Columns[col]
	if !exists {
		return nil, fmt.Errorf("%q, %w", col, ErrMissingColumn)
	}

	t, err := ParseTimes(f.TS, loc)
	if err != nil {
		return nil, err
	}
	return NewUnivariateDataset(t, values)
}

// ParseTimes parses every timestamp with TimeLayout in loc. A nil location is UTC.
func ParseTimes(ts []string, loc *time.Location) ([]time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t := make([]time.Time, 0, len(ts))
	for i, s := range ts {
		tPnt, err := time.ParseInLocation(TimeLayout, s, loc)
		if err != nil {
			return nil, fmt.Errorf("row %d %q, %w", i, s, ErrMalformedTime)
		}
		t = append(t, tPnt)
	}
	return t, nil
}

// ReadCSV reads a frame whose header is "ts" followed by the value column names. Empty
// value cells are read as NaN.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("unable to read header, %w", err)
	}
	if len(header) == 0 || header[0] != "ts" {
		return nil, ErrNoTimeColumn
	}

	f := &Frame{Columns: make(map[string][]float64, len(header)-1)}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read line %d, %w", line, err)
		}
		f.TS = append(f.TS, record[0])
		for j := 1; j < len(header); j++ {
			val := nan
			if record[j] != "" {
				val, err = strconv.ParseFloat(record[j], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d column %q, %w", line, header[j], err)
				}
			}
			f.Columns[header[j]] = append(f.Columns[header[j]], val)
		}
	}
	if len(f.TS) == 0 {
		return nil, ErrNoTrainingData
	}
	return f, nil
}
