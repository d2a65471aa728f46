package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"
)

type contextKey int

const (
	playerIDKey contextKey = iota
)

// getPlayerID extracts the authenticated player from context.
func getPlayerID(ctx context.Context) string {
	v, _ := ctx.Value(playerIDKey).(string)
	return v
}

// PlayerResolver resolves a player ID from a bearer token.
type PlayerResolver interface {
	ResolvePlayer(ctx context.Context, token string) (string, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver PlayerResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			playerID, err := resolver.ResolvePlayer(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if playerID == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			ctx = context.WithValue(ctx, playerIDKey, playerID)
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware injects a default player when auth is disabled.
func noAuthMiddleware(defaultPlayer string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, playerIDKey, defaultPlayer)
			return next(ctx, method, req)
		}
	}
}

// RateLimit bounds mutating tool calls per player. A zero rate disables it.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

type playerLimiter struct {
	limit RateLimit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newPlayerLimiter(limit RateLimit) *playerLimiter {
	return &playerLimiter{limit: limit, limiters: make(map[string]*rate.Limiter)}
}

func (l *playerLimiter) allow(playerID string) bool {
	if l.limit.PerSecond <= 0 {
		return true
	}
	l.mu.Lock()
	lim, ok := l.limiters[playerID]
	if !ok {
		burst := l.limit.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(l.limit.PerSecond), burst)
		l.limiters[playerID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
