package handlers

import (
	"net/http"

	"github.com/anonto42/quartfeed/internal/views"
	"github.com/labstack/echo/v4"
)

// HelloHandler serves the hello app
type HelloHandler struct {
	name string
}

func NewHelloHandler(name string) *HelloHandler {
	return &HelloHandler{name: name}
}

// RegisterHelloRoutes registers the hello page
func (h *HelloHandler) RegisterHelloRoutes(g *echo.Group) {
	g.GET("/", h.Hello)
}

func (h *HelloHandler) Hello(c echo.Context) error {
	return c.Render(http.StatusOK, "hello.html", views.Page{Data: h.name})
}
