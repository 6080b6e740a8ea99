package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"loantracker/internal/api/handler/dto"
	"loantracker/internal/domain/loan"
	"loantracker/internal/pkg/apperrors"
)

type ScheduleHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewScheduleHandler(s loan.LoanService, l *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: s,
		logger:  l.With("component", "ScheduleHandler"),
	}
}

// GetSchedule returns the amortization schedule for a loan.
//
// @Summary Retrieve the amortization schedule
// @Description Computes the full schedule from the loan's stored terms and timelines, with a summary of totals, progress and the next payment due.
// @Tags Schedule
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.ScheduleResponse "Schedule successfully computed"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/schedule [get]
// @Security BearerAuth
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	result, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewScheduleResponse(result))
}

// WhatIf computes a schedule with a transient overlay applied.
//
// @Summary Preview a what-if schedule
// @Description Recomputes the schedule with the overlay applied on top of the stored loan. Replacement fields swap out a whole timeline; additional lists merge into it. Nothing is persisted.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.WhatIfRequest true "What-if overlay payload"
// @Success 200 {object} dto.ScheduleResponse "What-if schedule successfully computed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/schedule/whatif [post]
// @Security BearerAuth
func (h *ScheduleHandler) WhatIf(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.WhatIfRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	result, err := h.service.WhatIf(r.Context(), loanID, req.ToOverlay())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewScheduleResponse(result))
}

// SolvePayoffTarget finds the repayment that clears the loan by a date.
//
// @Summary Solve for a payoff target date
// @Description Finds the smallest regular repayment that pays the loan off on or before the target date, passed as the `date` query parameter.
// @Tags Schedule
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param date query string true "Target payoff date (YYYY-MM-DD)"
// @Success 200 {object} dto.PayoffTargetResponse "Payoff solution found"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID or target date"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 422 {object} dto.ErrorResponse "Target date unreachable"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/payoff-target [get]
// @Security BearerAuth
func (h *ScheduleHandler) SolvePayoffTarget(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		respondError(w, fmt.Errorf("%w: date query parameter is required", apperrors.ErrInvalidArgument))
		return
	}
	targetDate, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid date format (use YYYY-MM-DD)", apperrors.ErrInvalidArgument))
		return
	}

	solution, err := h.service.SolvePayoffTarget(r.Context(), loanID, targetDate)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPayoffTargetResponse(solution))
}

// PreviewRateChange shows the impact of a rate change before saving it.
//
// @Summary Preview a rate change
// @Description Computes keep-payment and recalculated-payment options for a prospective rate change, with interest and repayment-count deltas against the current schedule.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.RateChangeRequest true "Prospective rate change payload"
// @Success 200 {object} dto.RateChangePreviewResponse "Preview successfully computed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/rates/preview [post]
// @Security BearerAuth
func (h *ScheduleHandler) PreviewRateChange(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.RateChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	preview, err := h.service.PreviewRateChange(r.Context(), loanID, req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewRateChangePreviewResponse(preview))
}

// PreviewRepaymentChange shows the impact of a repayment change.
//
// @Summary Preview a repayment change
// @Description Compares the current schedule against one with the prospective repayment change applied, returning payoff date, interest and repayment-count deltas.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.RepaymentChangeRequest true "Prospective repayment change payload"
// @Success 200 {object} dto.RepaymentChangePreviewResponse "Preview successfully computed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/repayment-changes/preview [post]
// @Security BearerAuth
func (h *ScheduleHandler) PreviewRepaymentChange(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.RepaymentChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	preview, err := h.service.PreviewRepaymentChange(r.Context(), loanID, req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewRepaymentChangePreviewResponse(preview))
}
