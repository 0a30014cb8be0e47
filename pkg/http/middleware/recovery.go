package middleware

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Recover returns panic recovery middleware. A panicking handler produces a
// 500 response instead of tearing down the server.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic recovered: %v", r)
					_ = c.NoContent(http.StatusInternalServerError)
				}
			}()
			return next(c)
		}
	}
}
