package timedataset

import (
	"time"
)

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

// MaxTime returns the latest time in the slice regardless of ordering
func (t TimeSlice) MaxTime() time.Time {
	var maxTime time.Time
	for _, tPnt := range t {
		if maxTime.IsZero() || tPnt.After(maxTime) {
			maxTime = tPnt
		}
	}
	return maxTime
}

// EstimateFreq returns the most common delta between consecutive points. Ties are broken
// by the smaller delta.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		delta := t[i].Sub(t[i-1])
		frequencies[delta] += 1
	}

	var maxCnt int
	var maxDelta time.Duration

	for delta, cnt := range frequencies {
		if cnt > maxCnt || (cnt == maxCnt && delta < maxDelta) {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}
