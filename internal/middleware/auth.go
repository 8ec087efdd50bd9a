package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tenant-service/internal/model"
	"tenant-service/internal/service"
	"tenant-service/pkg/jwtutil"
	"tenant-service/pkg/logger"
	"tenant-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	adminIDKey    = "admin_id"
	userClaimsKey = "user_claims"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateUserToken(tokenString string) (*jwtutil.UserClaims, error)
	ValidateAdminToken(tokenString string) (*jwtutil.AdminClaims, error)
}

// AdminGate confirms that the admin behind a token is still active
type AdminGate interface {
	RequireActive(ctx context.Context, adminID uint) error
}

// AdminIDFromEcho returns the admin id set by AdminAuth
func AdminIDFromEcho(c echo.Context) uint {
	id, _ := c.Get(adminIDKey).(uint)
	return id
}

// UserClaimsFromEcho returns the claims set by UserAuth
func UserClaimsFromEcho(c echo.Context) *jwtutil.UserClaims {
	claims, _ := c.Get(userClaimsKey).(*jwtutil.UserClaims)
	return claims
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, model.Fail[any](http.StatusUnauthorized, message))
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		prometheus.RecordAuthError("missing_token")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		prometheus.RecordAuthError("invalid_auth_format")
		return "", false
	}
	return parts[1], true
}

// AdminAuth requires a valid system admin token whose admin is still active.
// Deactivating an admin revokes access on the next request.
func AdminAuth(tokens TokenValidator, gate AdminGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			tokenString, ok := bearerToken(c)
			if !ok {
				return unauthorized(c, "Missing or malformed authorization token")
			}

			claims, err := tokens.ValidateAdminToken(tokenString)
			if err != nil {
				log.Warn("Invalid admin token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return unauthorized(c, "Invalid or expired token")
			}

			if err := gate.RequireActive(c.Request().Context(), claims.AdminID); err != nil {
				var f *service.Failure
				if errors.As(err, &f) {
					log.Warn("Admin token rejected", zap.Uint("admin_id", claims.AdminID), zap.String("reason", f.Message))
					return c.JSON(f.Status, model.Fail[any](f.Status, f.Message))
				}
				log.Error("Failed to check admin status", zap.Uint("admin_id", claims.AdminID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, model.Fail[any](http.StatusInternalServerError, "Internal server error"))
			}

			c.Set(adminIDKey, claims.AdminID)
			return next(c)
		}
	}
}

// UserAuth requires a valid tenant user token issued for the schema the
// request resolved to. It must run after TenantResolver.
func UserAuth(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			tokenString, ok := bearerToken(c)
			if !ok {
				return unauthorized(c, "Missing or malformed authorization token")
			}

			claims, err := tokens.ValidateUserToken(tokenString)
			if err != nil {
				log.Warn("Invalid user token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return unauthorized(c, "Invalid or expired token")
			}

			if claims.Schema != SchemaFromEcho(c) {
				log.Warn("Token issued for another tenant",
					zap.String("token_schema", claims.Schema),
					zap.String("request_schema", SchemaFromEcho(c)))
				prometheus.RecordAuthError("tenant_mismatch")
				return unauthorized(c, "Invalid or expired token")
			}

			c.Set(userClaimsKey, claims)
			return next(c)
		}
	}
}
