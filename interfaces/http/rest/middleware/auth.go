package middleware

import (
	stderrors "errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"hazboun-backend/pkg/auth"
	"hazboun-backend/pkg/errors"
)

// AdminAuth guards the mutation routes.
type AdminAuth struct {
	validator   *auth.JWTValidator
	ipLimiter   *auth.IPRateLimiter
	userLimiter *auth.UserRateLimiter
	errs        *errors.ErrorHandler
	logger      *zap.Logger
}

// NewAdminAuth creates the guard. A nil validator turns authentication off;
// rate limiting still applies.
func NewAdminAuth(validator *auth.JWTValidator, requestsPerMinute int, errs *errors.ErrorHandler, logger *zap.Logger) *AdminAuth {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &AdminAuth{
		validator:   validator,
		ipLimiter:   auth.NewIPRateLimiter(requestsPerMinute),
		userLimiter: auth.NewUserRateLimiter(requestsPerMinute),
		errs:        errs,
		logger:      logger,
	}
}

// Enabled reports whether a token is required.
func (a *AdminAuth) Enabled() bool {
	return a.validator != nil
}

// Require returns the middleware.
func (a *AdminAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		allowed, err := a.ipLimiter.Allow(r.Context(), clientIP)
		if err != nil {
			a.errs.Handle(w, r, err)
			return
		}
		if !allowed {
			a.errs.Handle(w, r, errors.NewRateLimitError("Rate limit exceeded"))
			return
		}

		if a.validator == nil {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" {
			a.errs.Handle(w, r, errors.NewUnauthorizedError("Missing authentication token"))
			return
		}

		claims, err := a.validator.ValidateToken(token)
		if err != nil {
			a.logger.Warn("Invalid token",
				zap.Error(err),
				zap.String("ip", clientIP),
				zap.String("path", r.URL.Path),
			)
			switch {
			case stderrors.Is(err, auth.ErrExpiredToken):
				a.errs.Handle(w, r, errors.NewUnauthorizedError("Token has expired"))
			case stderrors.Is(err, auth.ErrInvalidSignature):
				a.errs.Handle(w, r, errors.NewUnauthorizedError("Invalid token signature"))
			default:
				a.errs.Handle(w, r, errors.NewUnauthorizedError("Invalid token"))
			}
			return
		}
		if !claims.HasRole(auth.RoleAdmin) {
			a.errs.Handle(w, r, errors.NewForbiddenError("Admin role required"))
			return
		}

		allowed, err = a.userLimiter.Allow(r.Context(), claims.Subject)
		if err != nil {
			a.errs.Handle(w, r, err)
			return
		}
		if !allowed {
			a.errs.Handle(w, r, errors.NewRateLimitError("User rate limit exceeded"))
			return
		}

		ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
			UserID: claims.Subject,
			Email:  claims.Email,
			Roles:  claims.Roles,
		})
		a.logger.Debug("Request authenticated",
			zap.String("user_id", claims.Subject),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken reads a bearer token from the Authorization header or the
// auth_token cookie.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return strings.TrimSpace(header)
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// getClientIP relies on chi's RealIP having rewritten RemoteAddr.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
