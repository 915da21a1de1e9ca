package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateT(t *testing.T) {
	numPnts := 7
	res := GenerateT(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), numPnts, 24*time.Hour)
	assert.Len(t, res, numPnts)

	assert.Equal(t, res[0], time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, res[numPnts-1], time.Date(1970, 1, 7, 0, 0, 0, 0, time.UTC))
}

func TestSeries(t *testing.T) {
	numPnts := 7
	s := Series(GenerateConstY(numPnts, 1))

	res := s.Add(GenerateConstY(numPnts, 2))
	require.Equal(t, Series([]float64{3, 3, 3, 3, 3, 3, 3}), res)

	tSeries := GenerateT(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), numPnts, 24*time.Hour)
	s.SetConst(tSeries, 2.0,
		time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 5, 0, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, Series([]float64{3, 3, 2, 2, 3, 3, 3}), s)

	s.Add(GenerateChange(tSeries, time.Date(1970, 1, 6, 0, 0, 0, 0, time.UTC), 1.0, 0.0))
	assert.Equal(t, Series([]float64{3, 3, 2, 2, 3, 4, 4}), s)
}

func TestGenerateNoiseReproducible(t *testing.T) {
	a := GenerateNoise(100, 2.0, 7)
	b := GenerateNoise(100, 2.0, 7)
	c := GenerateNoise(100, 2.0, 8)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
