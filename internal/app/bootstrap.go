package app

import (
	"fmt"
	"strings"

	"careernest/internal/config"
	"careernest/internal/delivery/http/middleware"
	"careernest/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	container, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{
		AppName: cfg.App.AppName,
	})

	f.Use(middleware.NewErrorMiddleware(container.Logger).Middleware())
	f.Use(middleware.NewAccessLogMiddleware(container.Logger).Middleware())

	routes.Register(f, routes.Deps{
		Config: cfg,
		DB:     container.DB,
		Cache:  container.Cache,
		Logger: container.Logger,
	})

	return &App{Fiber: f}, container.Close, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
