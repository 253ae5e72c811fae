package middleware

import (
	"log"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// RequestID tags every request with X-Request-ID, keeping a caller-supplied
// value.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString})
}

// AccessLog writes one line per request.  Cookies and bodies are never
// logged.
func AccessLog() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogMethod:    true,
		LogURIPath:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				log.Printf("[http] %s %s %d %s ip=%s rid=%s err=%v", v.Method, v.URIPath, v.Status, v.Latency, v.RemoteIP, v.RequestID, v.Error)
				return nil
			}
			log.Printf("[http] %s %s %d %s ip=%s rid=%s", v.Method, v.URIPath, v.Status, v.Latency, v.RemoteIP, v.RequestID)
			return nil
		},
	})
}

// Recover turns handler panics into 500 responses.
func Recover() echo.MiddlewareFunc {
	return echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Printf("[panic] %s %s: %v\n%s", c.Request().Method, c.Path(), err, stack)
			return err
		},
	})
}
