package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/grocerease/grocerease-backend/api/responses"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
	"github.com/grocerease/grocerease-backend/pkg/ratelimit"
)

const maxEmailPeekBytes = 64 << 10

// RateLimit throttles requests per client IP.
func RateLimit(limiter ratelimit.Limiter, scope string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !check(r.Context(), w, limiter, clientIP(r), scope, "ip", logg) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthRateLimitPolicy throttles a credential endpoint per IP and per
// submitted email. Either limiter may be nil.
type AuthRateLimitPolicy struct {
	Name  string
	IP    ratelimit.Limiter
	Email ratelimit.Limiter
}

// AuthRateLimit applies the IP limiter first, then the email limiter keyed on
// a hash of the normalised address found in the JSON body.
func AuthRateLimit(policy AuthRateLimitPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy.IP == nil && policy.Email == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if policy.IP != nil && !check(ctx, w, policy.IP, clientIP(r), policy.Name, "ip", logg) {
				return
			}

			if policy.Email != nil && r.Body != nil {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxEmailPeekBytes))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := normalizeEmail(extractEmail(body)); email != "" {
					if !check(ctx, w, policy.Email, hashValue(email), policy.Name, "email", logg) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func check(ctx context.Context, w http.ResponseWriter, limiter ratelimit.Limiter, key, scope, kind string, logg *logger.Logger) bool {
	decision, err := limiter.Allow(ctx, key)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}

	if decision.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(decision.Remaining, 0)))
	}
	if decision.Allowed {
		return true
	}

	retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"scope":       scope,
			"kind":        kind,
			"limit":       decision.Limit,
			"retry_after": retryAfter,
		}), "rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many requests, please try again later").
		WithDetails(map[string]any{"retryAfter": retryAfter}))
	return false
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
