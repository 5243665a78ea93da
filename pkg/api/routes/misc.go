package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/subpar/subpar/pkg/refdata"
)

// withComplexID parses the :identifier param and hands it to next, answering 400 itself when it is not a number.
func withComplexID(next func(c *fiber.Ctx, complex refdata.ComplexID) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")

		complex, err := refdata.ParseComplexID(identifier)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": fmt.Sprintf("invalid complex id '%s'", identifier),
			})
		}

		return next(c, complex)
	}
}

func complexNotFound(c *fiber.Ctx, complex refdata.ComplexID) error {
	c.SendStatus(fiber.StatusNotFound)
	return c.JSON(fiber.Map{
		"error": fmt.Sprintf("complex '%d' not found", complex),
	})
}
