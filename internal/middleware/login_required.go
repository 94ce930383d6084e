package middleware

import (
	"net/http"
	"net/url"

	"github.com/anonto42/quartfeed/internal/session"
	"github.com/labstack/echo/v4"
)

// LoginRequired redirects anonymous visitors to the login page, passing the
// requested URI as the next parameter.
func LoginRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := session.Get(c)
		if sess == nil || !sess.LoggedIn() {
			target := "/login?next=" + url.QueryEscape(c.Request().URL.RequestURI())
			return c.Redirect(http.StatusFound, target)
		}
		return next(c)
	}
}
