package timedataset

import (
	"math"
	"time"
)

var nan = math.NaN()

// CompleteRange returns every time point from start to end inclusive spaced freq apart.
// Points that cannot be represented as unix seconds are left as the zero time so callers
// can drop them.
func CompleteRange(start, end time.Time, freq time.Duration) []time.Time {
	if freq <= 0 || end.Before(start) {
		return nil
	}

	var t []time.Time
	for tPnt := start; !tPnt.After(end); tPnt = tPnt.Add(freq) {
		t = append(t, resolve(tPnt))
	}
	return t
}

// RangeN returns n time points starting at start spaced freq apart. Points are stepped one
// freq at a time so spans longer than a time.Duration are supported. Unresolvable points
// are the zero time as in CompleteRange.
func RangeN(start time.Time, n int, freq time.Duration) []time.Time {
	if freq <= 0 || n <= 0 {
		return nil
	}

	t := make([]time.Time, 0, n)
	tPnt := start
	for i := 0; i < n; i++ {
		t = append(t, resolve(tPnt))
		tPnt = tPnt.Add(freq)
	}
	return t
}

func resolve(t time.Time) time.Time {
	if !resolvable(t) {
		return time.Time{}
	}
	return t
}

func resolvable(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	unix := t.Unix()
	return unix > math.MinInt64/2 && unix < math.MaxInt64/2
}
