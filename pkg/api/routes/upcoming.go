package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/state"
)

func UpcomingRouter(router fiber.Router, trains *state.TrainStates) {
	router.Get("/:identifier", withComplexID(func(c *fiber.Ctx, complex refdata.ComplexID) error {
		upcoming, ok := trains.Get(complex)
		if !ok {
			return complexNotFound(c, complex)
		}

		return c.JSON(upcoming)
	}))
}
