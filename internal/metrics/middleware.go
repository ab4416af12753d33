package metrics

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderRequestID = "X-Request-ID"

// RequestCounter counts requests by method, route and status class and makes
// sure every response carries a request id.
func RequestCounter(reg *Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, rid)

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			reg.Inc(c.Request().Context(), HTTPRequestsTotal, map[string]string{
				"method": c.Request().Method,
				"route":  c.Path(),
				"status": StatusClass(status),
			}, 1)
			return err
		}
	}
}
