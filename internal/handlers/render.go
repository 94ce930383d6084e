package handlers

import (
	"net/http"

	"github.com/anonto42/quartfeed/internal/session"
	"github.com/anonto42/quartfeed/internal/views"
	"github.com/labstack/echo/v4"
)

// render fills in the signed-in user and pending flashes and renders page.
// Pages with forms add their CSRF token through withCSRF.
func render(c echo.Context, status int, name string, page views.Page) error {
	if sess := session.Get(c); sess != nil {
		page.CurrentUser = sess.Username()
		page.Flashes = append(sess.Flashes(), page.Flashes...)
	}
	return c.Render(status, name, page)
}

// withCSRF adds the session's CSRF token to a page that carries a form,
// creating the token on first use.
func withCSRF(c echo.Context, page views.Page) views.Page {
	if sess := session.Get(c); sess != nil {
		page.CSRFToken = sess.CSRFToken()
	}
	return page
}

// redirectWithFlash queues msg for the next page and redirects to target.
func redirectWithFlash(c echo.Context, target, msg string) error {
	if sess := session.Get(c); sess != nil {
		sess.AddFlash(msg)
	}
	return c.Redirect(http.StatusFound, target)
}

// validCSRF reports whether token matches the session. Always true when
// checking is disabled.
func validCSRF(c echo.Context, enabled bool, token string) bool {
	if !enabled {
		return true
	}
	sess := session.Get(c)
	return sess != nil && sess.ValidCSRFToken(token)
}

func currentUserID(c echo.Context) uint {
	if sess := session.Get(c); sess != nil {
		return sess.UserID()
	}
	return 0
}
