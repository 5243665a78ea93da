package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/subpar/subpar/pkg/refdata"
	"github.com/subpar/subpar/pkg/state"
)

func ElevatorsRouter(router fiber.Router, elevators *state.ElevatorStates) {
	router.Get("/:identifier", withComplexID(func(c *fiber.Ctx, complex refdata.ComplexID) error {
		found, ok := elevators.Get(complex)
		if !ok {
			return complexNotFound(c, complex)
		}

		reduced, err := reduceElevators(found, "detailed")
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sherrif could not reduce Elevators",
			})
		}

		return c.JSON(reduced)
	}))
}

func ElevatorsOverview(elevators *state.ElevatorStates) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(elevators.Summary())
	}
}

func reduceElevators(elevators []state.Elevator, group string) (interface{}, error) {
	return sheriff.Marshal(&sheriff.Options{
		Groups: []string{group},
	}, elevators)
}
