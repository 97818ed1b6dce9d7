package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/healthassist/internal/platform/auth"
)

// Recovery turns a handler panic into a 500 and logs it with the same
// request fields the Logger middleware records.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				buf := make([]byte, 4096)
				buf = buf[:runtime.Stack(buf, false)]
				rid, _ := c.Get("request_id").(string)
				req := c.Request()

				logger.Error().
					Str("request_id", rid).
					Str("method", req.Method).
					Str("route", c.Path()).
					Str("user_id", auth.UserIDFromContext(req.Context())).
					Str("panic", fmt.Sprint(r)).
					Bytes("stack", buf).
					Msg("panic recovered")

				err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}()
			return next(c)
		}
	}
}
