package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"

	"clothshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

const (
	// SessionCookie is the name of the cookie holding the session ID.
	SessionCookie = "clothshop_session"

	sessionUserKey  = "user"
	sessionAdminKey = "admin"

	localsUsername = "username"
	localsAdmin    = "admin"
)

// NewSessionStore creates the server-side session store.
func NewSessionStore() *session.Store {
	return session.New(session.Config{
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:" + SessionCookie,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
}

// EncryptCookies encrypts cookie values with a key derived from secret.
func EncryptCookies(secret string) fiber.Handler {
	sum := sha256.Sum256([]byte(secret))
	return encryptcookie.New(encryptcookie.Config{
		Key: base64.StdEncoding.EncodeToString(sum[:]),
	})
}

// Gate maps requests to a shopper identity or the admin flag, using the
// session cookie or a bearer token.
type Gate struct {
	store *session.Store
	auth  *services.AuthService
}

// NewGate creates a new Gate.
func NewGate(store *session.Store, auth *services.AuthService) *Gate {
	return &Gate{store: store, auth: auth}
}

// Session returns the request's session.
func (g *Gate) Session(c *fiber.Ctx) (*session.Session, error) {
	return g.store.Get(c)
}

// SessionUser returns the shopper stored in the session, if any.
func (g *Gate) SessionUser(c *fiber.Ctx) string {
	sess, err := g.Session(c)
	if err != nil {
		zap.S().Errorf("Failed to load session: %v", err)
		return ""
	}
	user, _ := sess.Get(sessionUserKey).(string)
	return user
}

// SessionAdmin reports whether the session carries the admin flag.
func (g *Gate) SessionAdmin(c *fiber.Ctx) bool {
	sess, err := g.Session(c)
	if err != nil {
		zap.S().Errorf("Failed to load session: %v", err)
		return false
	}
	admin, _ := sess.Get(sessionAdminKey).(bool)
	return admin
}

// LogInUser stores user in the session.
func (g *Gate) LogInUser(c *fiber.Ctx, user string) error {
	sess, err := g.Session(c)
	if err != nil {
		return err
	}
	sess.Set(sessionUserKey, user)
	return sess.Save()
}

// LogInAdmin sets the admin flag in the session.
func (g *Gate) LogInAdmin(c *fiber.Ctx) error {
	sess, err := g.Session(c)
	if err != nil {
		return err
	}
	sess.Set(sessionAdminKey, true)
	return sess.Save()
}

// LogOut destroys the whole session.
func (g *Gate) LogOut(c *fiber.Ctx) error {
	sess, err := g.Session(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// LogOutAdmin drops only the admin flag.
func (g *Gate) LogOutAdmin(c *fiber.Ctx) error {
	sess, err := g.Session(c)
	if err != nil {
		return err
	}
	sess.Delete(sessionAdminKey)
	return sess.Save()
}

// RequireUser rejects requests without a shopper identity with 401.
func (g *Gate) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _, err := g.identify(c)
		if err != nil || user == "" {
			return unauthorized(c)
		}
		c.Locals(localsUsername, user)
		return c.Next()
	}
}

// RequireAdmin rejects requests without the admin flag with 401.
func (g *Gate) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, admin, err := g.identify(c)
		if err != nil || !admin {
			return unauthorized(c)
		}
		c.Locals(localsAdmin, true)
		return c.Next()
	}
}

// Username returns the identity stored by RequireUser.
func Username(c *fiber.Ctx) string {
	user, _ := c.Locals(localsUsername).(string)
	return user
}

func (g *Gate) identify(c *fiber.Ctx) (string, bool, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return "", false, &services.AuthError{Message: "authorization header format must be 'Bearer <token>'"}
		}
		claims, err := g.auth.ValidateToken(parts[1])
		if err != nil {
			zap.S().Debugf("JWT validation failed: %v", err)
			return "", false, err
		}
		admin, _ := claims["admin"].(bool)
		if admin {
			return "", true, nil
		}
		user, _ := claims["username"].(string)
		return user, false, nil
	}

	sess, err := g.Session(c)
	if err != nil {
		return "", false, err
	}
	user, _ := sess.Get(sessionUserKey).(string)
	admin, _ := sess.Get(sessionAdminKey).(bool)
	return user, admin, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
	})
}
