package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dynkit/retype/internal/config"
	"github.com/dynkit/retype/internal/metrics"
	"github.com/dynkit/retype/internal/object"
	"github.com/dynkit/retype/internal/scenario"
)

// watchDebounce is how long after the last file event a re-run waits,
// so editors that write in bursts trigger one run, not five.
const watchDebounce = 500 * time.Millisecond

var watchListen string

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchListen, "listen", "",
		fmt.Sprintf("serve /healthz, /results and /metrics on this address (e.g. %s)", config.DefaultListenAddr))
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-run scenarios whenever their files change",
	Long: "Watches a directory of scenario files and re-runs all of them after\n" +
		"every change. With --listen, also serves the last run's results as\n" +
		"JSON and the protocol counters in Prometheus format.",
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

// watchState holds the outcome of the most recent run for /results.
type watchState struct {
	mu      sync.RWMutex
	lastRun time.Time
	results []*scenario.RunResult
}

func (ws *watchState) set(results []*scenario.RunResult) {
	ws.mu.Lock()
	ws.lastRun = time.Now()
	ws.results = results
	ws.mu.Unlock()
}

func (ws *watchState) snapshot() (time.Time, []*scenario.RunResult) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.lastRun, ws.results
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := scenarioDir()
	if len(args) == 1 {
		dir = args[0]
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if watchListen == "" {
		watchListen = viper.GetString("listen")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	state := &watchState{}

	var hooks []object.Hook
	var collector *metrics.Collector
	if watchListen != "" {
		collector = metrics.NewCollector(prometheus.NewRegistry())
		hooks = append(hooks, collector)
	}

	rerun := func() {
		files, err := scenario.ListFiles(dir)
		if err != nil {
			logger.Error("listing scenarios failed", "dir", dir, "error", err)
			return
		}
		var results []*scenario.RunResult
		for _, path := range files {
			r, err := scenario.LoadAndRun(path, hooks...)
			if err != nil {
				logger.Error("scenario failed to run", "file", path, "error", err)
				continue
			}
			results = append(results, r)
		}
		state.set(results)
		fmt.Print(scenario.FormatText(results))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig.String())
		cancel()
	}()

	var srv *http.Server
	if watchListen != "" {
		srv = watchServer(watchListen, state, collector)
		go func() {
			logger.Info("status server listening", "addr", watchListen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("status server failed", "error", err)
				cancel()
			}
		}()
	}

	logger.Info("watching scenarios", "dir", dir)
	rerun()

	err = watchLoop(ctx, dir, logger, rerun)

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Error("status server shutdown failed", "error", serr)
		}
	}
	return err
}

// watchLoop blocks on file events until ctx is cancelled, debouncing
// bursts into single re-runs.
func watchLoop(ctx context.Context, dir string, logger *slog.Logger, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isScenarioFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("scenario changed", "file", event.Name, "op", event.Op.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, rerun)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

func isScenarioFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range config.ScenarioFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// watchServer wires the status endpoints: liveness, the last run's
// results and the Prometheus counters.
func watchServer(addr string, state *watchState, collector *metrics.Collector) *http.Server {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	router.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		lastRun, results := state.snapshot()
		w.Header().Set("Content-Type", "application/json")
		if results == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"no run yet"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"last_run": lastRun.Format(time.RFC3339),
			"results":  results,
		})
	}).Methods("GET")

	router.Handle("/metrics", collector.Handler()).Methods("GET")

	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
