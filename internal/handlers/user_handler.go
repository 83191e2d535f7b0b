package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"usermgmt/internal/middleware"
	"usermgmt/internal/models"
	"usermgmt/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user records.
type UserHandler struct {
	service *services.UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the user routes with the Fiber router.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/users", h.HandleCreateUser)
	router.Get("/users/:id", middleware.ValidUserID(), h.HandleGetUser)
	router.Delete("/users/:id", h.HandleDeleteUser)
	router.Get("/user/", h.HandleListUsers)
}

// HandleCreateUser validates and stores a new user.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	if !c.Is("json") {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   "request body must be JSON",
		})
	}

	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	user, err := h.service.CreateUser(req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUser retrieves a single user by id.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(user)
}

// HandleListUsers lists users, optionally filtered by country and an inclusive age range.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	var filter models.UserFilter
	if country := c.Query("country"); country != "" {
		filter.Country = &country
	}

	var err error
	if filter.MinAge, err = queryInt(c, "min_age"); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Invalid query parameter",
			"error":   err.Error(),
		})
	}
	if filter.MaxAge, err = queryInt(c, "max_age"); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Invalid query parameter",
			"error":   err.Error(),
		})
	}

	users, err := h.service.ListUsers(filter)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(users)
}

// HandleDeleteUser removes a user by id.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &n, nil
}

func (h *UserHandler) respondError(c *fiber.Ctx, err error) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Violations,
		})
	case errors.Is(err, models.ErrConflict):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email already registered",
			"error":   err.Error(),
		})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	h.logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not complete request",
		"error":   err.Error(),
	})
}
