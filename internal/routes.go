package internal

import (
	"eigenkey/internal/controllers"
	"eigenkey/internal/providers"
	"eigenkey/internal/structures"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	var access http.Handler = http.HandlerFunc(apiController.Access)
	if conf.WebServer.RateLimit > 0 {
		access = providers.RateLimitMiddleware(conf.WebServer.RateLimit)(access)
	}

	routers.Post("/access", access)
	routers.Get("/validate", http.HandlerFunc(apiController.Validate))
	routers.Get("/anomaly", http.HandlerFunc(apiController.Anomaly))
	return routers
}
