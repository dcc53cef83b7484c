package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/grovetools/ausec/config"
	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/logging"
	"github.com/grovetools/ausec/pkg/metrics"
	"github.com/grovetools/ausec/pkg/paths"
	"github.com/grovetools/ausec/state"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewWatchCmd() *cobra.Command {
	var (
		flags       sessionFlags
		interval    string
		metricsAddr string
		outDir      string
		sessions    int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Repeat the fetch on an interval and report new results bundles",
		Long: `Repeat the fetch on an interval and report new results bundles.

Each round is an independent session: the server is listed again and the
latest results bundle selected again. Rounds never overlap; a slow round
delays the next one. Failed rounds are logged and the watch carries on.

Examples:
ausec watch --interval 2m
ausec watch --metrics-addr :9090 --out ./data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			if interval != "" {
				cfg.Watch.Interval = interval
			}
			if metricsAddr != "" {
				cfg.Watch.MetricsAddr = metricsAddr
			}
			every, err := cfg.Watch.IntervalDuration()
			if err != nil || every <= 0 {
				return errors.InvalidInput(fmt.Sprintf("invalid watch interval %q", cfg.Watch.Interval))
			}

			w := &watcher{
				cfg:    cfg,
				outDir: outDir,
				limit:  sessions,
				store:  state.NewStore(paths.StateDir()),
				log:    logging.NewLogger("watch"),
			}

			ctx := cmd.Context()
			if cfg.Watch.MetricsAddr != "" {
				stop := serveMetrics(cfg.Watch.MetricsAddr, w.log)
				defer stop()
			}
			return w.run(ctx, every)
		},
	}

	flags.add(cmd, true)
	cmd.Flags().StringVar(&interval, "interval", "", "Time between sessions (default from config, 5m)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write the documents here whenever the results bundle changes")
	cmd.Flags().IntVar(&sessions, "sessions", 0, "Stop after this many sessions (0 runs until interrupted)")
	return cmd
}

type watcher struct {
	cfg    *config.Config
	outDir string
	limit  int
	store  *state.Store
	log    logrus.FieldLogger

	rounds      int
	lastResults map[string]string
}

func (w *watcher) run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for n := 1; ; n++ {
		w.session(ctx)
		if w.limit > 0 && n >= w.limit {
			return nil
		}
		select {
		case <-ctx.Done():
			w.log.Info("Watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// session runs one independent load and reports whether the results bundle
// differs from the last one seen, in this process or a previous one.
func (w *watcher) session(ctx context.Context) bool {
	w.rounds++

	l, err := newLoader(w.cfg)
	if err != nil {
		metrics.RecordSession(err)
		w.log.WithError(err).Error("Session setup failed")
		return false
	}

	data, err := l.Load(ctx)
	metrics.RecordSession(err)
	if err != nil {
		w.log.WithError(err).Error("Session failed")
		return false
	}

	key := "results." + data.Election
	current := filepath.Base(data.ResultsFile)
	previous := w.lastResults[data.Election]
	if previous == "" && w.store != nil {
		if previous, err = w.store.GetString(key); err != nil {
			w.log.WithError(err).Warn("Could not read watch state")
		}
	}

	changed := current != previous
	fields := logrus.Fields{"election": data.Election, "results": current}
	switch {
	case !changed:
		w.log.WithFields(fields).Debug("Results unchanged")
	case previous == "":
		w.log.WithFields(fields).Info("Initial results bundle")
	default:
		metrics.RecordResultsChange()
		fields["previous"] = previous
		w.log.WithFields(fields).Info("New results bundle")
	}
	if w.lastResults == nil {
		w.lastResults = make(map[string]string)
	}
	w.lastResults[data.Election] = current

	if changed && w.store != nil {
		if err := w.store.Set(key, current); err != nil {
			w.log.WithError(err).Warn("Could not save watch state")
		}
	}
	if w.outDir != "" && (changed || w.rounds == 1) {
		if _, err := writeDocuments(w.outDir, data); err != nil {
			w.log.WithError(err).Error("Failed to write documents")
		}
	}
	return changed
}

// serveMetrics exposes /metrics until the returned stop function is called.
func serveMetrics(addr string, log logrus.FieldLogger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
