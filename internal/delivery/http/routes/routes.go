package routes

import (
	"log"

	"careernest/internal/config"
	"careernest/internal/database"
	"careernest/internal/delivery/http/handler"
	v1 "careernest/internal/delivery/http/routes/v1"
	"careernest/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type Deps struct {
	Config config.Config
	DB     database.DB
	Cache  usecase.DedupCache
	Logger *log.Logger
}

func Register(app *fiber.App, deps Deps) {
	if app == nil {
		return
	}

	handler.NewHealthHandler(deps.DB).RegisterRoutes(app)

	api := app.Group("/api")
	v1.Register(api.Group("/v1"), deps.Config, deps.DB, deps.Cache, deps.Logger)
}
