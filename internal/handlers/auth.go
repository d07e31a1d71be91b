package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/catalogapi/internal/services"
)

// AuthService is the credential manager used by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, in services.RegistrationInput) (uuid.UUID, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegistrationInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}

	id, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully.",
		"user": fiber.Map{
			"id":     id,
			"name":   req.Name,
			"email":  req.Email,
			"mobile": req.Mobile,
		},
	})
}

// Login exchanges email and password for a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}

	token, err := h.auth.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful.",
		"token":   token,
	})
}
