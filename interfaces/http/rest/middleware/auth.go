package middleware

import (
	"errors"
	"net/http"
	"strings"

	"hard-backend/pkg/auth"
	pkgerrors "hard-backend/pkg/errors"

	"go.uber.org/zap"
)

// Headers set by the Lambda entrypoint from the API Gateway JWT authorizer
// claims. They are only trusted when the authenticator is built with
// TrustGateway.
const (
	HeaderGatewayAuthorized = "X-API-Gateway-Authorized"
	HeaderUserID            = "X-User-ID"
	HeaderUserEmail         = "X-User-Email"
)

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// Validator checks bearer tokens. Nil disables bearer authentication.
	Validator *auth.JWTValidator
	// Limiter throttles authenticated users. Nil disables limiting.
	Limiter *auth.UserRateLimiter
	// TrustGateway accepts the identity headers forwarded by API Gateway.
	TrustGateway bool
}

// Authenticate resolves the caller into an auth.UserIdentity and stores it
// in the request context. Requests without a usable identity get a 401.
func Authenticate(opts AuthOptions, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := identify(r, opts)
			if err != nil {
				logger.Debug("Authentication failed",
					zap.Error(err),
					zap.String("path", r.URL.Path),
					zap.String("clientIP", getClientIP(r)),
				)
				errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError(unauthorizedMessage(err)))
				return
			}

			allowed, err := opts.Limiter.Allow(r.Context(), user.ID)
			if err != nil {
				errorHandler.Handle(w, r, err)
				return
			}
			if !allowed {
				errorHandler.HandleStatus(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
		})
	}
}

func identify(r *http.Request, opts AuthOptions) (*auth.UserIdentity, error) {
	if opts.TrustGateway && r.Header.Get(HeaderGatewayAuthorized) == "true" {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			return nil, auth.ErrInvalidClaims
		}
		return &auth.UserIdentity{ID: userID, Email: r.Header.Get(HeaderUserEmail)}, nil
	}

	if opts.Validator == nil {
		return nil, auth.ErrMissingToken
	}

	token, err := extractToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := opts.Validator.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &auth.UserIdentity{ID: claims.UserID, Email: claims.Email}, nil
}

// extractToken extracts the bearer token from the Authorization header
func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", auth.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "Missing authorization header"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "Invalid token signature"
	case errors.Is(err, auth.ErrInvalidClaims):
		return "Invalid token claims"
	default:
		return "Invalid token"
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		host = host[:i]
	}
	return host
}
