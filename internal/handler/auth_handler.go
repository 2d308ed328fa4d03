package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/transport"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	UserType  string `json:"user_type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string      `json:"access_token"`
	User        domain.User `json:"user"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	userType, err := domain.ParseUserType(req.UserType)
	if err != nil {
		return toHTTPError(err)
	}

	token, user, err := h.backend.Register(domain.User{
		Email:     req.Email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		UserType:  userType,
	}, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	return transport.OK(c, fiber.StatusCreated, authResponse{AccessToken: token, User: user})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, user, ok := h.backend.Login(req.Email, req.Password)
	if !ok {
		return transport.NewError(fiber.StatusUnauthorized, transport.CodeUnauthorized, msgInvalidCredentials)
	}

	return transport.OK(c, fiber.StatusOK, authResponse{AccessToken: token, User: user})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	h.backend.Logout(bearerToken(c))
	return transport.OK(c, fiber.StatusOK, nil)
}

func (h *Handler) Profile(c *fiber.Ctx) error {
	return transport.OK(c, fiber.StatusOK, currentUser(c))
}
