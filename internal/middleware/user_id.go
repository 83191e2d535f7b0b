package middleware

import (
	"regexp"

	"github.com/gofiber/fiber/v2"
)

var reUserID = regexp.MustCompile(`^[0-9a-f-]{36}$`)

// ValidUserID rejects requests whose :id path parameter is not a lowercase hyphenated id token.
func ValidUserID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !reUserID.MatchString(id) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Invalid user id",
				"error":   "user id must be 36 characters of lowercase hex digits and hyphens",
			})
		}
		return c.Next()
	}
}
