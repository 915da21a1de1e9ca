package robustforecast

import (
	"time"

	"github.com/aouyang1/go-robustforecast/timedataset"
)

// Band is the point forecast with its upper and lower bound. All three have the same length.
type Band struct {
	Forecast []float64 `json:"forecast"`
	Upper    []float64 `json:"upper"`
	Lower    []float64 `json:"lower"`
}

// Len returns the number of forecast points
func (b Band) Len() int {
	return len(b.Forecast)
}

// clampLower sets negative lower bounds to zero
func (b Band) clampLower() {
	for i, v := range b.Lower {
		if v < 0 {
			b.Lower[i] = 0
		}
	}
}

// ResultRow is a single materialized forecast point
type ResultRow struct {
	TS    int64   `json:"ts"`
	Pred  float64 `json:"pred"`
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// Row is the exposed projection of a forecast point
type Row struct {
	TS    int64   `json:"ts"`
	Upper float64 `json:"upper"`
	Pred  float64 `json:"pred"`
}

// Materialize timestamps the band starting one interval after the training end. Points
// whose timestamp cannot be resolved are dropped.
func Materialize(trainingEnd time.Time, interval time.Duration, band Band) []ResultRow {
	n := band.Len()
	rows := make([]ResultRow, 0, n)
	if n == 0 {
		return rows
	}

	ts := timedataset.RangeN(trainingEnd.Add(interval), n, interval)
	for i := 0; i < n && i < len(ts); i++ {
		if ts[i].IsZero() {
			continue
		}
		rows = append(rows, ResultRow{
			TS:    ts[i].Unix(),
			Pred:  band.Forecast[i],
			Upper: band.Upper[i],
			Lower: band.Lower[i],
		})
	}
	return rows
}

// Project restricts rows to the known timestamps, matched by unix second, and drops the
// lower bound. A nil known slice keeps every row.
func Project(rows []ResultRow, known []time.Time) []Row {
	var keep map[int64]struct{}
	if known != nil {
		keep = make(map[int64]struct{}, len(known))
		for _, t := range known {
			keep[t.Unix()] = struct{}{}
		}
	}

	res := make([]Row, 0, len(rows))
	for _, r := range rows {
		if keep != nil {
			if _, exists := keep[r.TS]; !exists {
				continue
			}
		}
		res = append(res, Row{TS: r.TS, Upper: r.Upper, Pred: r.Pred})
	}
	return res
}
