package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists route paths that bypass authentication.
var publicPaths = map[string]bool{
	"/health":       true,
	"/health/db":    true,
	"/health/redis": true,
}

// AuthSkipper returns true for requests whose route should skip
// authentication. Use it as JWTConfig.Skipper.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Path())
}

func IsPublicPath(path string) bool {
	return publicPaths[path]
}
