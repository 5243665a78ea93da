package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/state"
)

func ComplexRouter(router fiber.Router, states *state.States) {
	router.Get("/:identifier", withComplexID(func(c *fiber.Ctx, complex refdata.ComplexID) error {
		full, ok := states.Full(complex)
		if !ok {
			return complexNotFound(c, complex)
		}

		elevators, err := reduceElevators(full.Elevators, "basic")
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sherrif could not reduce Elevators",
			})
		}

		return c.JSON(fiber.Map{
			"meta":      full.Meta,
			"upcoming":  full.Upcoming,
			"elevators": elevators,
		})
	}))
}
