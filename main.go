package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asset-catalog/internal/catalog/application"
	"asset-catalog/internal/catalog/infrastructure/sqlstore"
	cataloghttp "asset-catalog/internal/catalog/interfaces/http"
	"asset-catalog/internal/catalog/interfaces/ops"
	"asset-catalog/internal/config"
	"asset-catalog/internal/eventing"
	"asset-catalog/internal/observability/metrics"
	"asset-catalog/internal/presentation"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "call" {
		os.Exit(runCall(cfg, os.Args[2:]))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, err := cfg.Dialect()
	if err != nil {
		logger.Fatalf("store driver error: %v", err)
	}
	store, err := sqlstore.Open(ctx, dialect, cfg.StoreSource())
	if err != nil {
		logger.Fatalf("store open error: %v", err)
	}
	defer store.Close()

	metrics.Init(store.DB(), logger)

	bus := eventing.NewInMemoryBus()
	svc, err := application.NewService(store.Stations(), store.Assets(),
		application.WithLogger(logger),
		application.WithBus(bus),
	)
	if err != nil {
		logger.Fatalf("catalog service init error: %v", err)
	}
	registry, err := ops.NewRegistry(svc)
	if err != nil {
		logger.Fatalf("ops registry init error: %v", err)
	}
	broker := cataloghttp.NewSSEBroker()
	broker.Attach(bus)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/ops/", cataloghttp.NewOpsHandler(registry, logger))
	mux.Handle("/api/v1/exports/", cataloghttp.NewExportHandler(svc, logger))
	mux.Handle("/api/v1/dashboard", cataloghttp.NewDashboardHandler(svc))
	mux.Handle("/api/v1/events", cataloghttp.NewStreamHandler(broker))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", cataloghttp.NewHealthHandler(store))

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(mux, logger),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("http shutdown error: %v", err)
		}
	}()

	logger.Printf("catalog store %s ready, %d operations registered", dialect, len(registry.Names()))
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
}

// runCall issues one operation against a running server:
//
//	asset-catalog call listStations
//	asset-catalog call getVehicleById 3
func runCall(cfg config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: call <operation> [json-arg ...]")
		return 2
	}
	invoker, err := presentation.NewHTTPInvoker("http://"+cfg.HTTPAddr, &http.Client{Timeout: cfg.RequestTimeout})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	opArgs := make([]any, 0, len(args)-1)
	for _, raw := range args[1:] {
		opArgs = append(opArgs, json.RawMessage(raw))
	}
	reply, err := invoker.Invoke(context.Background(), args[0], opArgs...)
	if err != nil {
		fmt.Fprintln(os.Stderr, presentation.Notify(args[0], err).Message)
		return 1
	}
	if reply.NotFound {
		fmt.Println("not found")
		return 0
	}
	fmt.Println(string(reply.Result))
	return 0
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush lets the event stream push through the middleware.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
