package handlers

import (
	"log"

	"shopsmart/internal/models"
	"shopsmart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration and authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user and auth routes with the Fiber app.
// authRequired protects the current-user lookup.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleRegister)
	userRoutes.Post("/admin-register", h.HandleAdminRegister)

	authRoutes := router.Group("/auth")
	authRoutes.Post("/", h.HandleLogin)
	authRoutes.Get("/", authRequired, h.HandleGetCurrentUser)
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AdminRegisterRequest additionally carries the shared admin secret key.
type AdminRegisterRequest struct {
	RegisterRequest
	AdminSecretKey string `json:"admin_secret_key" validate:"required"`
}

// HandleRegister handles new user registration and issues a session token.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	user := &models.User{Name: req.Name, Email: req.Email, Password: req.Password}
	token, err := h.authService.Register(user)
	if err != nil {
		log.Printf("Error registering user: %v", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"role":   user.Role,
		"userId": user.ID,
	})
}

// HandleAdminRegister registers an admin user, gated by the secret key.
func (h *AuthHandler) HandleAdminRegister(c *fiber.Ctx) error {
	var req AdminRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": validationErrors(err)})
	}

	user := &models.User{Name: req.Name, Email: req.Email, Password: req.Password}
	token, err := h.authService.RegisterAdmin(user, req.AdminSecretKey)
	if err != nil {
		log.Printf("Error registering admin: %v", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"role":   user.Role,
		"userId": user.ID,
	})
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates a user and issues a token carrying id and role.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		// Malformed credentials read the same as wrong ones.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": []fiber.Map{{"msg": "Invalid Credentials"}}})
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"role":   user.Role,
		"userId": user.ID,
	})
}

// HandleGetCurrentUser returns the authenticated user's record.
func (h *AuthHandler) HandleGetCurrentUser(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.authService.GetUser(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
