package handler

import (
	"errors"
	"strings"

	"careernest/internal/delivery/http/dto"
	"careernest/internal/delivery/http/middleware"
	"careernest/internal/domain/user"
	"careernest/internal/pkg/response"
	"careernest/internal/repository"
	"careernest/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ScheduleHandler struct {
	uc usecase.ScheduleUsecase
}

type scheduleRequest struct {
	ApplicationID string `json:"application_id"`
	InterviewDate string `json:"interview_date"`
	InterviewTime string `json:"interview_time"`
	InterviewMode string `json:"interview_mode"`
	Location      string `json:"interview_location"`
	Link          string `json:"interview_link"`
	Notes         string `json:"notes"`
}

func NewScheduleHandler(uc usecase.ScheduleUsecase) *ScheduleHandler {
	return &ScheduleHandler{uc: uc}
}

func (h *ScheduleHandler) RegisterRoutes(r fiber.Router, authMw *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	company := r.Group("", authMw.RequireRole(user.RoleCompany))
	company.Get("/slot-availability", h.CheckSlot)
	company.Post("", h.ScheduleInterview)

	r.Get("", h.ListSchedules, authMw.RequireRole(user.RoleCompany, user.RoleAdmin))
}

// CheckSlot is the pre-submit availability probe used by the scheduling
// form. The authoritative check happens again inside the booking
// transaction.
func (h *ScheduleHandler) CheckSlot(c fiber.Ctx) error {
	_, companyID, ok := middleware.CompanyPrincipalFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
	}

	var applicationID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("application_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid application id", nil, err)
		}
		applicationID = &id
	}

	check, err := h.uc.CheckSlot(c.Context(), companyID, c.Query("date"), c.Query("time"), applicationID)
	if err != nil {
		return mapScheduleUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SlotCheckResponse{
		Available: check.Available,
		Message:   check.Message,
	})
}

func (h *ScheduleHandler) ScheduleInterview(c fiber.Ctx) error {
	_, companyID, ok := middleware.CompanyPrincipalFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
	}

	var req scheduleRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	applicationID, err := uuid.Parse(strings.TrimSpace(req.ApplicationID))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid application id", nil, err)
	}

	scheduleID, err := h.uc.ScheduleInterview(c.Context(), usecase.ScheduleInput{
		ApplicationID: applicationID,
		CompanyID:     companyID,
		InterviewDate: req.InterviewDate,
		InterviewTime: req.InterviewTime,
		Mode:          req.InterviewMode,
		Location:      req.Location,
		Link:          req.Link,
		Notes:         req.Notes,
	})
	if err != nil {
		return mapScheduleUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Interview scheduled successfully! Waiting for admin approval.", dto.ScheduleCreatedResponse{ScheduleID: scheduleID})
}

func (h *ScheduleHandler) ListSchedules(c fiber.Ctx) error {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var (
		rows []repository.ScheduleRow
		err  error
	)
	switch p.Role {
	case user.RoleAdmin:
		rows, err = h.uc.ListAllSchedules(c.Context())
	case user.RoleCompany:
		_, companyID, ok := middleware.CompanyPrincipalFromCtx(c)
		if !ok {
			return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
		}
		rows, err = h.uc.ListCompanySchedules(c.Context(), companyID)
	default:
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
	}
	if err != nil {
		return mapScheduleUsecaseError(err)
	}

	out := make([]dto.ScheduleResponse, 0, len(rows))
	for _, row := range rows {
		s := row.Schedule
		out = append(out, dto.ScheduleResponse{
			ID:            s.ID,
			ApplicationID: s.ApplicationID,
			JobID:         s.JobID,
			JobTitle:      row.JobTitle,
			ApplicantName: row.ApplicantName,
			CompanyName:   row.CompanyName,
			InterviewDate: s.InterviewDate.Format("2006-01-02"),
			InterviewTime: s.InterviewTime,
			Mode:          string(s.Mode),
			Location:      s.Location,
			Link:          s.Link,
			Status:        string(s.Status),
			CompanyNotes:  s.CompanyNotes,
			CreatedAt:     s.CreatedAt,
		})
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func mapScheduleUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, verr.Error(), verr.Fields, err)
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFoundOrUnauthorized):
		return middleware.NewAppError(fiber.StatusNotFound, "Application not found or unauthorized access.", nil, err)
	case errors.Is(err, usecase.ErrJobExpired):
		return middleware.NewAppError(fiber.StatusConflict, "Cannot schedule interview for an expired job posting.", nil, err)
	case errors.Is(err, usecase.ErrInvalidApplicationState):
		return middleware.NewAppError(fiber.StatusConflict, "Cannot schedule interview for an application in its current status.", nil, err)
	case errors.Is(err, usecase.ErrDuplicateSchedule):
		return middleware.NewAppError(fiber.StatusConflict, "This application already has an interview schedule.", nil, err)
	case errors.Is(err, usecase.ErrSlotUnavailable):
		return middleware.NewAppError(fiber.StatusConflict, "This time slot is not available. Please choose another time.", nil, err)
	case errors.Is(err, usecase.ErrCompanyDoubleBooked):
		return middleware.NewAppError(fiber.StatusConflict, "You already have another interview scheduled at this time.", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
