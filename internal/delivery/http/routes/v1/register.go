package v1

import (
	"log"

	"careernest/internal/config"
	"careernest/internal/database"
	"careernest/internal/delivery/http/handler"
	"careernest/internal/delivery/http/middleware"
	"careernest/internal/pkg/jwt"
	"careernest/internal/repository"
	"careernest/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

func Register(r fiber.Router, cfg config.Config, db database.DB, cache usecase.DedupCache, logger *log.Logger) {
	if r == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	authMw := middleware.NewAuthMiddleware(jwtSvc)

	userRepo := repository.NewPostgresUserRepository(db)
	appRepo := repository.NewPostgresApplicationRepository()
	scheduleRepo := repository.NewPostgresScheduleRepository()
	notificationRepo := repository.NewPostgresNotificationRepository(db)

	notificationUC := usecase.NewNotificationUsecase(notificationRepo, cache, logger)
	scheduleUC := usecase.NewScheduleUsecase(db, appRepo, scheduleRepo, userRepo, notificationUC, logger)
	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)

	handler.NewAuthHandler(authUC).RegisterRoutes(r.Group("/auth"))

	protected := r.Group("", authMw.Middleware())

	handler.NewScheduleHandler(scheduleUC).RegisterRoutes(protected.Group("/schedules"), authMw)
	handler.NewNotificationHandler(notificationUC).RegisterRoutes(protected.Group("/notifications"))
}
