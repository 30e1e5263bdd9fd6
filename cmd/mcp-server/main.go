// cmd/mcp-server/main.go: standalone HTTP MCP server for gosymint.
//
// Exposes the integrator and kernel tools as an HTTP endpoint for agent
// frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080 -config gosymint.yaml
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/njchilds90/gosymint/internal/config"
	"github.com/njchilds90/gosymint/mcp"
	"github.com/njchilds90/gosymint/risch"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides server.port)")
	path := flag.String("config", "", "Config file (default ./gosymint.yaml)")
	flag.Parse()

	cfg, err := config.Load(config.New(), *path)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal(err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	handler := mcp.NewHandler(risch.New(cfg.Options(logger)), logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newMux(handler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.WithField("addr", srv.Addr).Info("gosymint MCP server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error(err)
		os.Exit(1)
	}
}

func newMux(handler *mcp.Handler, logger log.FieldLogger) *http.ServeMux {
	mux := http.NewServeMux()

	// POST /tool: handle a tool call
	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.WithField("request", uuid.NewString())
		defer func() {
			if rec := recover(); rec != nil {
				reqLog.Errorf("panic in /tool: %v\n%s", rec, debug.Stack())
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

		var req mcp.ToolRequest
		if err := dec.Decode(&req); err != nil {
			writeError(w, err.Error())
			return
		}
		if dec.More() {
			writeError(w, "invalid JSON: trailing data")
			return
		}

		start := time.Now()
		resp := handler.Handle(r.Context(), req)
		reqLog.WithFields(log.Fields{
			"tool":     req.Tool,
			"outcome":  resp.Outcome,
			"failed":   resp.Error != "",
			"duration": time.Since(start),
		}).Info("tool call")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	// GET /schema: tool schema for agent registration
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, mcp.ToolSpec())
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	return mux
}

func writeError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
