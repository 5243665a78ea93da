package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/subpar/subpar/pkg/api/routes"
	"github.com/subpar/subpar/pkg/feeds"
	"github.com/subpar/subpar/pkg/metrics"
	"github.com/subpar/subpar/pkg/state"
)

func NewApp(states *state.States, feedList []feeds.Feed, collector *metrics.Collector) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("version", routes.APIVersion)
	webApp.Get("feeds", routes.ListFeeds(feedList))

	routes.UpcomingRouter(webApp.Group("/upcoming"), states.Trains)
	routes.ElevatorsRouter(webApp.Group("/elevators"), states.Elevators)
	webApp.Get("elevators_overview", routes.ElevatorsOverview(states.Elevators))
	routes.ComplexRouter(webApp.Group("/complex"), states)

	if collector != nil {
		webApp.Get("metrics", adaptor.HTTPHandler(collector.Handler()))
	}

	return webApp
}
