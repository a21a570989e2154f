package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/nature-translator/internal/config"
)

var allMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPut,
	http.MethodPatch,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
}

// NewEcho creates the echo instance with the standard middleware stack
func NewEcho(cfg *config.Config, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger))
	e.Use(NewCORS(cfg.CORS))

	return e
}

// RequestLogger logs every request through zap
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("HTTP request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remoteIP", v.RemoteIP),
				zap.Error(v.Error))
			return nil
		},
	})
}

// NewCORS creates a CORS middleware from application config. A "*" method
// list allows every method and a "*" header list echoes whatever headers
// the browser asks for. A "*" origin combined with credentials reflects the
// caller's origin, since browsers reject a literal "*" with credentials.
func NewCORS(cfg config.CORSConfig) echo.MiddlewareFunc {
	allowMethods := cfg.AllowMethods
	if len(allowMethods) == 0 || contains(allowMethods, "*") {
		allowMethods = allMethods
	}

	allowHeaders := cfg.AllowHeaders
	if contains(allowHeaders, "*") {
		allowHeaders = nil
	}

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     allowOrigins,
		AllowMethods:     allowMethods,
		AllowHeaders:     allowHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,

		UnsafeWildcardOriginWithAllowCredentials: cfg.AllowCredentials && contains(allowOrigins, "*"),
	})
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
