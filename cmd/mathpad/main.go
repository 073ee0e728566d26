// cmd/mathpad/main.go — HTTP front end for the mathpad core.
//
// Accepts an expression and a command, runs it through the normalize ->
// dispatch pipeline, and returns the result as JSON. Rendering is left to
// whatever client sits in front.
//
// Usage:
//   go run ./cmd/mathpad -port 8080 [-config mathpad.yaml] [-engine numeric]
//
// Compute endpoint:  POST /compute
// Command list:      GET  /commands
// Health endpoint:   GET  /health
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"github.com/njchilds90/mathpad"
	"github.com/njchilds90/mathpad/engine"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type computeRequest struct {
	Expression string `json:"expression"`
	Command    string `json:"command"`
}

type computeResponse struct {
	Kind    string                `json:"kind"`
	Text    *mathpad.TextResult   `json:"text,omitempty"`
	Samples *mathpad.SampleResult `json:"samples,omitempty"`
}

func newLogger(cfg mathpad.Config) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	handlers := []slog.Handler{slog.NewTextHandler(os.Stderr, opts)}
	cleanup := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		cleanup = func() { _ = f.Close() }
	}
	return slog.New(slogmulti.Fanout(handlers...)), cleanup, nil
}

func newEngine(cfg mathpad.Config, logger *slog.Logger) (engine.Engine, error) {
	if cfg.Engine == "numeric" {
		return engine.NewNumeric(), nil
	}
	sp := engine.NewSymPy(
		engine.WithPython(cfg.Python),
		engine.WithReadyCeiling(time.Duration(cfg.ReadyCeiling)),
		engine.WithLogger(logger),
	)
	if err := sp.Start(context.Background()); err != nil {
		return nil, err
	}
	return sp, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var unknown *mathpad.UnknownCommandError
	var engineErr *engine.Error
	switch {
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, mathpad.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "engine is still loading"})
	case errors.As(err, &engineErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	configPath := flag.String("config", "", "Path to a YAML config file")
	engineName := flag.String("engine", "", "Engine backend: sympy or numeric (overrides config)")
	flag.Parse()

	cfg, err := mathpad.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *engineName != "" {
		cfg.Engine = *engineName
	}

	logger, cleanup, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	eng, err := newEngine(cfg, logger)
	if err != nil {
		logger.Error("engine start", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	dispatcher := mathpad.NewDispatcher(eng,
		mathpad.WithDomain(cfg.Domain),
		mathpad.WithSamples(cfg.Samples),
	)

	mux := http.NewServeMux()

	// POST /compute — run one command
	mux.HandleFunc("/compute", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in /compute", "panic", rec, "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req computeRequest
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
			return
		}

		command, err := mathpad.ParseCommand(req.Command)
		if err != nil {
			writeError(w, err)
			return
		}

		result, err := dispatcher.Dispatch(r.Context(), req.Expression, command)
		if err != nil {
			logger.Warn("compute failed", "command", req.Command, "error", err)
			writeError(w, err)
			return
		}

		resp := computeResponse{Kind: result.Kind()}
		switch res := result.(type) {
		case *mathpad.TextResult:
			resp.Text = res
		case *mathpad.SampleResult:
			resp.Samples = res
		}
		writeJSON(w, http.StatusOK, resp)
	})

	// GET /commands — the fixed command set
	mux.HandleFunc("/commands", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"commands": mathpad.Commands()})
	})

	// GET /health — liveness plus engine readiness
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "ok",
			"engine_ready": eng.Ready(),
			"busy":         dispatcher.Busy(),
			"time":         time.Now().UTC().Format(time.RFC3339),
		})
	})

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("mathpad listening", "addr", addr, "engine", cfg.Engine)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}
