package handlers

import (
	"time"

	"shelfkeeper/internal/log"
	"shelfkeeper/internal/services"
	"shelfkeeper/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
	// SecureCookie marks the session cookie Secure (set behind HTTPS).
	SecureCookie bool
}

func (h *AuthHandler) setSession(c *fiber.Ctx, tok string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    tok,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookie,
		Expires:  expires,
	})
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	// Ensure CSRF token is injected for the form even if middleware locals are missing.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	return render(c, "login", fiber.Map{"Err": "", "CSRFToken": tok})
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, email, reason string) error {
	log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
	tok := c.Cookies("csrf_")
	return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password", "CSRFToken": tok})
}

// Login handles the page form and sets the session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		return h.loginFailed(c, email, "bad_format")
	}
	if !validate.Password(pass) {
		return h.loginFailed(c, email, "bad_password_format")
	}

	tok, _, err := h.Auth.Login(c.UserContext(), email, pass)
	if err != nil {
		return h.loginFailed(c, email, "bad_credentials")
	}
	h.setSession(c, tok, time.Now().Add(h.Auth.TokenTTL()))
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.setSession(c, "", time.Now().Add(-1*time.Hour))
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/login")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// APILogin exchanges credentials for a bearer token.
func (h *AuthHandler) APILogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	fail := func(reason string) error {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": reason})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}
	if _, ok := validate.Email(req.Email); !ok {
		return fail("bad_format")
	}
	if !validate.Password(req.Password) {
		return fail("bad_password_format")
	}
	tok, u, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail("bad_credentials")
	}
	log.Audit(c, "auth.login.success", map[string]any{"email": req.Email})
	return c.JSON(fiber.Map{"token": tok, "user": fiber.Map{"id": u.ID, "email": u.Email, "name": u.Name}})
}
