package http

import (
	"context"
	"log/slog"
	"net/http"

	"exportdocs/internal/core/application/usecases/queries"
	"exportdocs/internal/core/domain/model/user"
	"exportdocs/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const principalKey = "principal"

type authenticator interface {
	Handle(ctx context.Context, query queries.AuthenticateUserQuery) (user.Authenticatable, error)
}

// BasicAuth resolves the Authorization header to a user and stores it on the
// context. Unknown users and wrong passwords get the same 401.
func BasicAuth(auth authenticator, logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "exportdocs",
		Validator: func(username, password string, c echo.Context) (bool, error) {
			query, err := queries.NewAuthenticateUserQuery(username, password)
			if err != nil {
				return false, nil
			}
			principal, err := auth.Handle(c.Request().Context(), query)
			if err != nil {
				if statusFor(err) != http.StatusUnauthorized {
					logger.ErrorContext(c.Request().Context(), "authentication lookup failed", slog.Any("error", err))
					return false, echo.NewHTTPError(http.StatusServiceUnavailable, retryMessage)
				}
				return false, nil
			}
			c.Set(principalKey, principal)
			return true, nil
		},
	})
}

func principalFrom(c echo.Context) (user.Authenticatable, bool) {
	principal, ok := c.Get(principalKey).(user.Authenticatable)
	return principal, ok && principal != nil
}

// RequestLogger writes one slog line per request.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.Any("error", v.Error))
			}
			logger.LogAttrs(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	})
}

// Metrics records every request under its route pattern.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			done := m.TrackRequest(c.Request().Method, c.Path())
			if err := next(c); err != nil && !c.Response().Committed {
				c.Error(err)
			}
			done(c.Response().Status)
			return nil
		}
	}
}
