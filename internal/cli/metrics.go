package cli

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sischcode/patti-csv/internal/config"
	"github.com/sischcode/patti-csv/internal/metrics"
	"github.com/sischcode/patti-csv/internal/metrics/datadog"
	"github.com/sischcode/patti-csv/internal/metrics/prompush"
)

// setupMetrics installs the named backend and returns a func that flushes
// it at the end of the run. An unknown name is an error; "" and "none"
// keep the no-op backend.
func setupMetrics(name string, env config.Env, lg zerolog.Logger) (func(), error) {
	var (
		b       metrics.Backend
		closeFn func() error
	)
	switch name {
	case "", "none":
		lg.Debug().Str("backend", name).Msg("Metrics disabled")
		return func() {}, nil

	case "pushgateway", "prompush":
		pb, err := prompush.NewBackend(env.Job, env.PushgatewayURL)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		lg.Debug().Str("url", env.PushgatewayURL).Str("job", env.Job).Msg("Metrics to Pushgateway")
		b = pb

	case "datadog":
		db, err := datadog.NewBackend(datadog.Config{
			Addr:       env.DogStatsDAddr,
			Namespace:  "pattidsv.",
			GlobalTags: []string{"job:" + env.Job},
		})
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		lg.Debug().Str("addr", env.DogStatsDAddr).Msg("Metrics to DogStatsD")
		b, closeFn = db, db.Close

	default:
		return nil, fmt.Errorf("metrics: unknown backend %q (want none, pushgateway or datadog)", name)
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			lg.Warn().Err(err).Msg("Metrics flush failed")
		}
		if closeFn != nil {
			if err := closeFn(); err != nil {
				lg.Warn().Err(err).Msg("Metrics close failed")
			}
		}
	}, nil
}
