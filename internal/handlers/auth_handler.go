package handlers

import (
	"fmt"
	"strings"

	"clothshop/internal/middleware"
	"clothshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// AuthHandler handles shopper and admin login, logout and bearer tokens.
type AuthHandler struct {
	authService *services.AuthService
	gate        *middleware.Gate
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, gate *middleware.Gate) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		gate:        gate,
		validate:    validator.New(),
	}
}

// RegisterPageRoutes registers the form based login and logout pages.
func (h *AuthHandler) RegisterPageRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)

	router.Get("/admin", h.HandleAdminPage)
	router.Post("/admin/login", h.HandleAdminLogin)
	router.Get("/admin/logout", h.HandleAdminLogout)
}

// RegisterAPIRoutes registers the token endpoint.
func (h *AuthHandler) RegisterAPIRoutes(router fiber.Router) {
	router.Post("/auth/token", h.HandleToken)
}

// HandleHome sends signed-in shoppers to the shop and everyone else to the login form.
func (h *AuthHandler) HandleHome(c *fiber.Ctx) error {
	if h.gate.SessionUser(c) != "" {
		return c.Redirect("/shop")
	}
	return c.Render("login", fiber.Map{})
}

// HandleLogin checks the form credentials and starts a shopper session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := strings.TrimSpace(c.FormValue("password"))

	identity, err := h.authService.LoginUser(username, password)
	if err != nil {
		zap.S().Infof("Failed login for user %q", username)
		return c.Render("login", fiber.Map{"error": "Invalid credentials"})
	}
	if err := h.gate.LogInUser(c, identity); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return c.Redirect("/shop")
}

// HandleLogout ends the session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.gate.LogOut(c); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return c.Redirect("/")
}

// HandleAdminPage shows all orders to admins and the admin login form to everyone else.
func (h *AuthHandler) HandleAdminPage(c *fiber.Ctx) error {
	if !h.gate.SessionAdmin(c) {
		return c.Render("admin_login", fiber.Map{})
	}
	return c.Render("admin", fiber.Map{})
}

// HandleAdminLogin checks the admin credentials and sets the admin flag.
func (h *AuthHandler) HandleAdminLogin(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := strings.TrimSpace(c.FormValue("password"))

	if err := h.authService.LoginAdmin(username, password); err != nil {
		zap.S().Warnf("Failed admin login for user %q", username)
		return c.Render("admin_login", fiber.Map{"error": "Invalid admin credentials"})
	}
	if err := h.gate.LogInAdmin(c); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return c.Redirect("/admin")
}

// HandleAdminLogout drops the admin flag but keeps any shopper session.
func (h *AuthHandler) HandleAdminLogout(c *fiber.Ctx) error {
	if err := h.gate.LogOutAdmin(c); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return c.Redirect("/admin")
}

// TokenRequest represents the request body for a bearer token.
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Admin    bool   `json:"admin"`
}

// HandleToken exchanges credentials for a bearer token.
func (h *AuthHandler) HandleToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(c.Body(), &req); err != nil {
		return &services.ValidationError{Message: "invalid request body"}
	}
	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		fields := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields = append(fields, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
		return &services.ValidationError{Message: strings.Join(fields, "; ")}
	}

	subject := req.Username
	if req.Admin {
		if err := h.authService.LoginAdmin(req.Username, req.Password); err != nil {
			return err
		}
	} else {
		identity, err := h.authService.LoginUser(req.Username, req.Password)
		if err != nil {
			return err
		}
		subject = identity
	}

	token, err := h.authService.IssueToken(subject, req.Admin)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token})
}
