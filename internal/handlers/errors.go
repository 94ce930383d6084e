package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/quartfeed/internal/views"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPErrorHandler answers JSON for API and health routes and renders the
// error page for everything else. Server errors are logged.
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		}

		if code >= http.StatusInternalServerError {
			log.Error("Request failed",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
			)
			message = http.StatusText(code)
		}

		var respErr error
		switch {
		case c.Request().Method == http.MethodHead:
			respErr = c.NoContent(code)
		case isJSONPath(c.Request().URL.Path):
			respErr = c.JSON(code, echo.Map{"success": false, "message": message})
		default:
			respErr = render(c, code, "error.html", views.Page{
				Title: http.StatusText(code),
				Error: message,
			})
		}
		if respErr != nil {
			log.Error("Failed to write error response", zap.Error(respErr))
		}
	}
}

func isJSONPath(path string) bool {
	return path == "/health" || path == "/api" || strings.HasPrefix(path, "/api/")
}
