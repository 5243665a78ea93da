package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/subpar/subpar/pkg/feeds"
)

func ListFeeds(feedList []feeds.Feed) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(feedList)
	}
}
