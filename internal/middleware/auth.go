package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// SessionIDKey is the context key for storing the authenticated session ID.
	SessionIDKey contextKey = "session_id"
	// callInfoKey points at the logging interceptor's per-call record.
	callInfoKey contextKey = "call_info"
)

// callInfo lets inner interceptors report back to LoggingInterceptor.
type callInfo struct {
	sessionID string
}

// GetSessionID extracts the session ID from the context.
// Returns empty string if not found.
func GetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(SessionIDKey).(string)
	return sessionID
}

// WithSessionID returns a copy of ctx carrying sessionID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	RecordSessionID(ctx, sessionID)
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// RecordSessionID attaches sessionID to the RPC log line without changing
// ctx. Handlers that create a session use it.
func RecordSessionID(ctx context.Context, sessionID string) {
	if info, ok := ctx.Value(callInfoKey).(*callInfo); ok {
		info.sessionID = sessionID
	}
}

// RequireSession returns a middleware that validates session tokens. It
// extracts the token from the Authorization header, validates it, and adds
// the session ID to the request context. Procedures listed in public skip
// the check.
func RequireSession(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if open[req.Spec().Procedure] {
				return next(ctx, req)
			}

			// Extract Authorization header
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			// Parse Bearer token
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithSessionID(ctx, claims.SessionID), req)
		}
	}
}
