package handler

import (
	"errors"
	"strconv"

	"careernest/internal/delivery/http/dto"
	"careernest/internal/delivery/http/middleware"
	"careernest/internal/pkg/response"
	"careernest/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	uc usecase.NotificationUsecase
}

func NewNotificationHandler(uc usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Patch("/:id/read", h.MarkRead)
}

func (h *NotificationHandler) List(c fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
		limit = v
	}

	items, err := h.uc.ListForUser(c.Context(), p.UserID, limit)
	if err != nil {
		return mapNotificationUsecaseError(err)
	}

	out := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, dto.NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Type:      n.Type,
			Message:   n.Message,
			Link:      n.Link,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *NotificationHandler) UnreadCount(c fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	count, err := h.uc.UnreadCount(c.Context(), p.UserID)
	if err != nil {
		return mapNotificationUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid notification id", nil, err)
	}

	if err := h.uc.MarkRead(c.Context(), id, p.UserID); err != nil {
		return mapNotificationUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func mapNotificationUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFoundOrUnauthorized):
		return middleware.NewAppError(fiber.StatusNotFound, "Notification not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
