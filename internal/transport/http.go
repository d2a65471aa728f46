package transport

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultSessionTimeout = 30 * time.Minute

// Options configures the HTTP surface.
type Options struct {
	// MCP serves the MCP streamable HTTP protocol.
	MCP http.Handler
	// WriteMetrics writes Prometheus text exposition; nil disables /metrics.
	WriteMetrics func(w io.Writer)
	// Ready reports whether the simulation loop is running; nil means always.
	Ready func() bool
}

// NewMCPHandler exposes an MCP server over streamable HTTP.
func NewMCPHandler(server *sdkmcp.Server, sessionTimeout time.Duration) http.Handler {
	if sessionTimeout <= 0 {
		sessionTimeout = defaultSessionTimeout
	}
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: sessionTimeout},
	)
}

// NewServer creates the HTTP router.
func NewServer(opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}
	r.Get("/health", handleHealth(opts.Ready))
	if opts.WriteMetrics != nil {
		r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; version=0.0.4")
			opts.WriteMetrics(w)
		})
	}

	return r
}

func handleHealth(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("simulation stopped"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
