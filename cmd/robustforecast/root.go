package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "robustforecast",
		Short: "Robust forecast of a single regularly sampled series",
		Long: `Fits a forecast with an upper and lower band for one column of a csv.

Histories shorter than three periods, or without a detected cycle, are forecast from
per slot quantiles of the most recent cycles. Periodic histories are decomposed and the
season plus trend is extrapolated.

Examples:
  robustforecast forecast --config config.yaml --data train.csv
  robustforecast forecast --config config.yaml --data train.csv --known test.csv --plot fit.html
  robustforecast list`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")

	cmd.AddCommand(
		newForecastCmd(flags),
		newListCmd(),
	)
	return cmd
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q, %w", level, err)
	}
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}
