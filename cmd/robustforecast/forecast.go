package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/aouyang1/go-robustforecast"
	"github.com/aouyang1/go-robustforecast/score"
	"github.com/aouyang1/go-robustforecast/timedataset"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type forecastFlags struct {
	config   string
	data     string
	known    string
	plot     string
	profile  string
	location string
}

// output is the json document printed by the forecast command
type output struct {
	*robustforecast.Prediction
	Path   robustforecast.Path `json:"path"`
	Scores *score.Scores       `json:"scores,omitempty"`
}

func newForecastCmd(root *rootFlags) *cobra.Command {
	flags := &forecastFlags{}
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Fit a forecast and print the forecast rows",
		Long: `Fits the configured column of the training csv and prints the forecast rows.

The csv header must start with "ts" followed by the value columns, timestamps use the
"2006-01-02 15:04:05" layout. When a known csv is given, only its timestamps are printed
and if it carries the configured column the rows are scored against it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd, root, flags)
		},
	}
	cmd.Flags().StringVar(&flags.config, "config", "", "yaml config file")
	cmd.Flags().StringVar(&flags.data, "data", "", "training csv file")
	cmd.Flags().StringVar(&flags.known, "known", "", "csv of known future timestamps with optional actual values")
	cmd.Flags().StringVar(&flags.plot, "plot", "", "write an html plot of the fit to this path")
	cmd.Flags().StringVar(&flags.profile, "profile", "", "write a cpu profile to this directory")
	cmd.Flags().StringVar(&flags.location, "location", "UTC", "location the csv timestamps are in")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func runForecast(cmd *cobra.Command, root *rootFlags, flags *forecastFlags) error {
	if flags.profile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(flags.profile), profile.Quiet).Stop()
	}

	logger, err := newLogger(cmd.ErrOrStderr(), root.logLevel)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(flags.location)
	if err != nil {
		return fmt.Errorf("unable to load location, %w", err)
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	train, err := readFrame(flags.data)
	if err != nil {
		return err
	}

	f, err := robustforecast.New(cfg, robustforecast.WithLogger(logger), robustforecast.WithLocation(loc))
	if err != nil {
		return err
	}
	state, err := f.Fit(train)
	if err != nil {
		return err
	}

	var known []time.Time
	var actual map[int64]float64
	if flags.known != "" {
		knownFrame, err := readFrame(flags.known)
		if err != nil {
			return err
		}
		known, err = timedataset.ParseTimes(knownFrame.TS, loc)
		if err != nil {
			return fmt.Errorf("unable to parse known timestamps, %w", err)
		}
		if values, exists := knownFrame.Columns[cfg.ColName]; exists {
			actual = make(map[int64]float64, len(values))
			for i, t := range known {
				actual[t.Unix()] = values[i]
			}
		}
	}

	pred, err := f.Predict(known)
	if err != nil {
		return err
	}
	res := output{Prediction: pred, Path: state.Path}
	if actual != nil {
		scores, err := backtest(pred.Rows, actual)
		if err != nil {
			logger.Warn().Err(err).Msg("unable to score forecast")
		} else {
			res.Scores = scores
		}
	}

	if flags.plot != "" {
		if err := state.PlotFit(flags.plot); err != nil {
			return fmt.Errorf("unable to plot fit, %w", err)
		}
		logger.Info().Str("path", flags.plot).Msg("wrote fit plot")
	}

	encoded, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode forecast, %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}

func backtest(rows []robustforecast.Row, actual map[int64]float64) (*score.Scores, error) {
	predicted := make([]float64, 0, len(rows))
	upper := make([]float64, 0, len(rows))
	obs := make([]float64, 0, len(rows))
	for _, r := range rows {
		v, exists := actual[r.TS]
		if !exists {
			v = math.NaN()
		}
		predicted = append(predicted, r.Pred)
		upper = append(upper, r.Upper)
		obs = append(obs, v)
	}
	return score.NewScores(predicted, upper, obs)
}

func loadConfig(path string) (*robustforecast.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open config, %w", err)
	}
	defer file.Close()
	return robustforecast.LoadConfig(file)
}

func readFrame(path string) (*timedataset.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open csv, %w", err)
	}
	defer file.Close()

	frame, err := timedataset.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return frame, nil
}
