package decomposition

import (
	"fmt"
	"math"

	mat_ "github.com/aouyang1/go-robustforecast/mat"
	"github.com/aouyang1/go-robustforecast/models"
	"github.com/aouyang1/go-robustforecast/stats"
	"gonum.org/v1/gonum/mat"
)

// Harmonic fits an intercept, an optional linear trend and fourier orders of the cycle
// length with least squares. Points flagged as outliers in the residual are excluded and
// the fit is repeated up to MaxIterations times.
type Harmonic struct{}

func (h Harmonic) Decompose(values []float64, p Params) (Decomposition, Latest, error) {
	n := len(values)
	if err := validate(n, p, 3); err != nil {
		return Decomposition{}, Latest{}, err
	}

	// orders at or above half the cycle alias onto lower orders at integer sample positions
	orders := min(max(p.Orders, 1), (p.CycleLength-1)/2)
	feat := harmonicFeatures{
		n:      n,
		cycle:  p.CycleLength,
		orders: orders,
		trend:  !p.DisableTrend,
	}

	inliers := make([]int, 0, n)
	for i, v := range values {
		if !math.IsNaN(v) {
			inliers = append(inliers, i)
		}
	}

	var model models.Model
	for pass := 0; pass <= p.MaxIterations; pass++ {
		next, err := feat.fit(values, inliers)
		if err != nil {
			if model == nil {
				return Decomposition{}, Latest{}, err
			}
			// keep the previous pass when too many points were excluded
			break
		}
		model = next

		if pass == p.MaxIterations {
			break
		}

		residual, err := feat.residual(model, values)
		if err != nil {
			return Decomposition{}, Latest{}, err
		}
		masked := make([]float64, n)
		for i := range masked {
			masked[i] = math.NaN()
		}
		for _, i := range inliers {
			masked[i] = residual[i]
		}
		outliers := stats.DetectOutliers(masked, p.LowerPercentile, p.UpperPercentile, p.TukeyFactor)
		if len(outliers) == 0 {
			break
		}
		outlierSet := make(map[int]struct{}, len(outliers))
		for _, idx := range outliers {
			outlierSet[idx] = struct{}{}
		}
		kept := make([]int, 0, len(inliers))
		for _, i := range inliers {
			if _, exists := outlierSet[i]; exists {
				continue
			}
			kept = append(kept, i)
		}
		inliers = kept
	}

	trend, season := feat.components(model, 0, n)
	residual := make([]float64, n)
	for i := range residual {
		residual[i] = values[i] - trend[i] - season[i]
	}

	futureTrend, futureSeason := feat.components(model, n, n+p.Horizon)
	return Decomposition{
			Trend:    trend,
			Season:   season,
			Residual: residual,
		}, Latest{
			Trend:           futureTrend,
			Season:          futureSeason,
			SeasonPlusTrend: seasonPlusTrend(futureTrend, futureSeason),
		}, nil
}

type harmonicFeatures struct {
	n      int
	cycle  int
	orders int
	trend  bool
}

func (h harmonicFeatures) width() int {
	w := 2 * h.orders
	if h.trend {
		w++
	}
	return w
}

// row generates the feature row for sample index i. The trend feature is scaled by the
// training length so extrapolated indices continue the same slope.
func (h harmonicFeatures) row(i int) []float64 {
	row := make([]float64, 0, h.width())
	if h.trend {
		row = append(row, float64(i)/float64(h.n))
	}
	for k := 1; k <= h.orders; k++ {
		rad := 2.0 * math.Pi * float64(k) * float64(i) / float64(h.cycle)
		row = append(row, math.Sin(rad), math.Cos(rad))
	}
	return row
}

func (h harmonicFeatures) fit(values []float64, idx []int) (models.Model, error) {
	if len(idx) <= h.width() {
		return nil, fmt.Errorf("%d usable points for %d features, %w", len(idx), h.width(), ErrInsufficientData)
	}
	rows := make([][]float64, 0, len(idx))
	obs := make([]float64, 0, len(idx))
	for _, i := range idx {
		rows = append(rows, h.row(i))
		obs = append(obs, values[i])
	}
	x, err := mat_.NewDenseFromArray(rows)
	if err != nil {
		return nil, err
	}
	y := mat.NewDense(len(obs), 1, obs)

	model, err := models.NewOLSRegression(models.NewDefaultOLSOptions())
	if err != nil {
		return nil, err
	}
	if err := model.Fit(x, y); err != nil {
		return nil, fmt.Errorf("unable to fit harmonic model, %w", err)
	}
	return model, nil
}

// residual evaluates the fit over every sample index, including the ones excluded from it
func (h harmonicFeatures) residual(model models.Model, values []float64) ([]float64, error) {
	rows := make([][]float64, 0, len(values))
	for i := range values {
		rows = append(rows, h.row(i))
	}
	x, err := mat_.NewDenseFromArray(rows)
	if err != nil {
		return nil, err
	}
	fitted, err := model.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("unable to evaluate harmonic model, %w", err)
	}
	res := make([]float64, len(values))
	for i := range res {
		res[i] = values[i] - fitted[i]
	}
	return res, nil
}

// components evaluates the trend (intercept included) and season for indices [start, end)
func (h harmonicFeatures) components(model models.Model, start, end int) ([]float64, []float64) {
	coef := model.Coef()
	trend := make([]float64, 0, end-start)
	season := make([]float64, 0, end-start)
	for i := start; i < end; i++ {
		row := h.row(i)
		t := model.Intercept()
		offset := 0
		if h.trend {
			t += coef[0] * row[0]
			offset = 1
		}
		var s float64
		for j := offset; j < len(row); j++ {
			s += coef[j] * row[j]
		}
		trend = append(trend, t)
		season = append(season, s)
	}
	return trend, season
}
