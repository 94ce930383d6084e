package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/quartfeed/internal/models"
	"github.com/anonto42/quartfeed/internal/repositories"
	"github.com/anonto42/quartfeed/internal/session"
	"github.com/anonto42/quartfeed/internal/views"
	"github.com/anonto42/quartfeed/pkg/security"
	"github.com/anonto42/quartfeed/pkg/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgMissingCredentials = "Please enter username and password"
	msgInvalidPost        = "Invalid POST contents"
	msgUsernameTaken      = "Username already exists"
	msgUserNotFound       = "User not found"
	msgRegistered         = "You have been registered, please login"
)

// AuthConfig carries the settings AuthHandler needs from the app config.
type AuthConfig struct {
	CSRFEnabled bool
	JWTSecret   string
	JWTTTL      time.Duration
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	sessions       *session.Manager
	cfg            AuthConfig
	log            *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, sessions *session.Manager, cfg AuthConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		sessions:       sessions,
		cfg:            cfg,
		log:            log,
	}
}

// RegisterAuthRoutes registers the browser login flow. limit wraps the
// credential-checking POST /login.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, limit ...echo.MiddlewareFunc) {
	g.GET("/register", h.RegisterForm)
	g.POST("/register", h.Register)
	g.GET("/login", h.LoginForm)
	g.POST("/login", h.Login, limit...)
	g.GET("/logout", h.Logout)
}

// RegisterTokenRoutes registers the API token endpoint.
func (h *AuthHandler) RegisterTokenRoutes(g *echo.Group, limit ...echo.MiddlewareFunc) {
	g.POST("/token", h.IssueToken, limit...)
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return render(c, http.StatusOK, "register.html", withCSRF(c, views.Page{Title: "Register"}))
}

// Register creates a local account from the form.
func (h *AuthHandler) Register(c echo.Context) error {
	form, ok := bindCredentials(c)
	if !ok {
		return h.registerError(c, "", msgInvalidPost)
	}

	if form.Username == "" || form.Password == "" {
		return h.registerError(c, form.Username, msgMissingCredentials)
	}
	if !validCSRF(c, h.cfg.CSRFEnabled, form.CSRFToken) {
		return h.registerError(c, form.Username, msgInvalidPost)
	}
	if err := c.Validate(form); err != nil {
		return h.registerError(c, form.Username, validators.Describe(err))
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByUsername(ctx, form.Username); err == nil {
		return h.registerError(c, form.Username, msgUsernameTaken)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up user").SetInternal(err)
	}

	hashedPassword, err := security.HashPassword(form.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password").SetInternal(err)
	}

	user := &models.User{Username: form.Username, Password: hashedPassword}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return h.registerError(c, form.Username, msgUsernameTaken)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user").SetInternal(err)
	}
	h.log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))

	if sess := session.Get(c); sess != nil {
		sess.RotateCSRFToken()
	}
	return redirectWithFlash(c, "/login", msgRegistered)
}

func (h *AuthHandler) registerError(c echo.Context, username, msg string) error {
	return render(c, http.StatusOK, "register.html", withCSRF(c, views.Page{Title: "Register", Error: msg, Data: username}))
}

// LoginForm shows the login form and remembers a safe next target.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	if next := c.QueryParam("next"); next != "" {
		if sess := session.Get(c); sess != nil {
			sess.SetNext(next)
		}
	}
	return render(c, http.StatusOK, "login.html", withCSRF(c, views.Page{Title: "Login"}))
}

// Login checks credentials and signs the user into a fresh session.
func (h *AuthHandler) Login(c echo.Context) error {
	form, ok := bindCredentials(c)
	if !ok {
		return h.loginError(c, "", msgInvalidPost)
	}

	if form.Username == "" || form.Password == "" {
		return h.loginError(c, form.Username, msgMissingCredentials)
	}
	if !validCSRF(c, h.cfg.CSRFEnabled, form.CSRFToken) {
		return h.loginError(c, form.Username, msgInvalidPost)
	}

	user, err := h.authenticate(c, form)
	if err != nil {
		return err
	}
	if user == nil {
		return h.loginError(c, form.Username, msgUserNotFound)
	}

	sess := session.Get(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Session unavailable")
	}
	if err := h.sessions.Regenerate(sess); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start session").SetInternal(err)
	}
	sess.Login(user.ID, user.Username)
	sess.RotateCSRFToken()
	h.log.Info("User logged in", zap.Uint("user_id", user.ID))

	if next := sess.PopNext(); next != "" {
		return c.Redirect(http.StatusFound, next)
	}
	return redirectWithFlash(c, "/", "User @"+user.Username+" logged in")
}

func (h *AuthHandler) loginError(c echo.Context, username, msg string) error {
	return render(c, http.StatusOK, "login.html", withCSRF(c, views.Page{Title: "Login", Error: msg, Data: username}))
}

// authenticate returns nil, nil when the username or password is wrong.
func (h *AuthHandler) authenticate(c echo.Context, form *models.CredentialsForm) (*models.User, error) {
	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), form.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up user").SetInternal(err)
	}
	if !security.CheckPassword(user.Password, form.Password) {
		return nil, nil
	}
	return user, nil
}

// Logout clears the signed-in user.
func (h *AuthHandler) Logout(c echo.Context) error {
	if sess := session.Get(c); sess != nil {
		sess.Logout()
	}
	return c.Redirect(http.StatusFound, "/login")
}

// IssueToken exchanges a username and password for an API token.
func (h *AuthHandler) IssueToken(c echo.Context) error {
	var req models.CredentialsForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Describe(err))
	}

	user, err := h.authenticate(c, &req)
	if err != nil {
		return err
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, msgUserNotFound)
	}

	token, err := security.GenerateJWT(user.ID, user.Username, h.cfg.JWTSecret, h.cfg.JWTTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token").SetInternal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"token": token}})
}

// bindCredentials reads the form as submitted. Usernames are never
// rewritten; registration rejects markup through validation.
func bindCredentials(c echo.Context) (*models.CredentialsForm, bool) {
	var form models.CredentialsForm
	if err := c.Bind(&form); err != nil {
		return nil, false
	}
	return &form, true
}
