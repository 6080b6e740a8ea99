package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"loantracker/internal/api/handler/dto"
	"loantracker/internal/domain/loan"
	"loantracker/internal/pkg/apperrors"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrTargetUnreachable):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized."
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getLoanIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "loanID")
	if idStr == "" {
		return 0, fmt.Errorf("loanID not found in URL path")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

func getIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	if idStr == "" {
		return 0, fmt.Errorf("%s not found in URL path", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// CreateLoan handles the creation of a new loan.
//
// @Summary Create a new loan
// @Description Creates a loan from its name, principal, annual rate, repayment frequency, start date and term. An optional fixed repayment overrides the amortizing payment.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.LoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.CreateLoan(r.Context(), req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(created))
}

// ListLoans returns every stored loan.
//
// @Summary List loans
// @Description Returns all loans ordered by creation time.
// @Tags Loans
// @Produce json
// @Success 200 {array} dto.LoanResponse "Loans successfully retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]dto.LoanResponse, len(loans))
	for i := range loans {
		resp[i] = dto.NewLoanResponse(&loans[i])
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetLoan retrieves a loan together with its timelines.
//
// @Summary Retrieve loan details
// @Description Returns the loan and its rate changes, repayment changes, extra repayments and paid periods.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	detail, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanDetailResponse(detail))
}

// UpdateLoan replaces a loan's terms wholesale.
//
// @Summary Update a loan
// @Description Replaces the loan's name, principal, rate, frequency, start date, term and fixed repayment.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.LoanRequest true "Loan update request payload"
// @Success 200 {object} dto.LoanResponse "Loan successfully updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [put]
// @Security BearerAuth
func (h *LoanHandler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.LoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.UpdateLoan(r.Context(), loanID, req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(updated))
}

// DeleteLoan removes a loan and everything attached to it.
//
// @Summary Delete a loan
// @Description Deletes the loan; its timelines and scenarios go with it.
// @Tags Loans
// @Param loanID path int true "Loan ID"
// @Success 204 "Loan successfully deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeleteLoan(r.Context(), loanID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddRateChange records an interest rate change on the loan's timeline.
//
// @Summary Add a rate change
// @Description Records a rate change effective from the given date, with an optional adjusted repayment taking effect at the same time.
// @Tags Timelines
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.RateChangeRequest true "Rate change request payload"
// @Success 201 {object} dto.RateChangeResponse "Rate change successfully recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/rates [post]
// @Security BearerAuth
func (h *LoanHandler) AddRateChange(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.service.AddRateChange(r.Context(), loanID, req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewRateChangeResponse(created))
}

// DeleteRateChange removes a rate change from the loan's timeline.
//
// @Summary Delete a rate change
// @Tags Timelines
// @Param loanID path int true "Loan ID"
// @Param rateChangeID path int true "Rate change ID"
// @Success 204 "Rate change successfully deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "Loan or rate change not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/rates/{rateChangeID} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeleteRateChange(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	changeID, err := getIDParam(r, "rateChangeID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeleteRateChange(r.Context(), loanID, changeID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddRepaymentChange records a change to the regular repayment amount.
//
// @Summary Add a repayment change
// @Description Records a new regular repayment amount effective from the given date.
// @Tags Timelines
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.RepaymentChangeRequest true "Repayment change request payload"
// @Success 201 {object} dto.RepaymentChangeResponse "Repayment change successfully recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/repayment-changes [post]
// @Security BearerAuth
func (h *LoanHandler) AddRepaymentChange(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.service.AddRepaymentChange(r.Context(), loanID, req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewRepaymentChangeResponse(created))
}

// DeleteRepaymentChange removes a repayment change from the timeline.
//
// @Summary Delete a repayment change
// @Tags Timelines
// @Param loanID path int true "Loan ID"
// @Param repaymentChangeID path int true "Repayment change ID"
// @Success 204 "Repayment change successfully deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "Loan or repayment change not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/repayment-changes/{repaymentChangeID} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeleteRepaymentChange(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	changeID, err := getIDParam(r, "repaymentChangeID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeleteRepaymentChange(r.Context(), loanID, changeID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddExtraRepayment records a one-off lump sum payment.
//
// @Summary Add an extra repayment
// @Description Records a lump sum applied on the payment date falling on or after the given date.
// @Tags Timelines
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.ExtraRepaymentRequest true "Extra repayment request payload"
// @Success 201 {object} dto.ExtraRepaymentResponse "Extra repayment successfully recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/extra-repayments [post]
// @Security BearerAuth
func (h *LoanHandler) AddExtraRepayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.ExtraRepaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.AddExtraRepayment(r.Context(), loanID, req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewExtraRepaymentResponse(created))
}

// DeleteExtraRepayment removes an extra repayment from the timeline.
//
// @Summary Delete an extra repayment
// @Tags Timelines
// @Param loanID path int true "Loan ID"
// @Param extraRepaymentID path int true "Extra repayment ID"
// @Success 204 "Extra repayment successfully deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "Loan or extra repayment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/extra-repayments/{extraRepaymentID} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeleteExtraRepayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	extraID, err := getIDParam(r, "extraRepaymentID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeleteExtraRepayment(r.Context(), loanID, extraID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkPaid flags a schedule period as paid.
//
// @Summary Mark a period as paid
// @Description Marks the schedule row with the given period number as paid. Idempotent.
// @Tags Payments
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param periodNumber path int true "Period number (1-based)"
// @Success 200 {object} map[string]string "Period marked as paid"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID or period number"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/paid/{periodNumber} [post]
// @Security BearerAuth
func (h *LoanHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	periodNumber, err := getIDParam(r, "periodNumber")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.MarkPaid(r.Context(), loanID, int(periodNumber)); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Period marked as paid"})
}

// UnmarkPaid clears the paid flag from a schedule period.
//
// @Summary Unmark a paid period
// @Description Clears the paid flag for the given period number. Idempotent.
// @Tags Payments
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param periodNumber path int true "Period number (1-based)"
// @Success 200 {object} map[string]string "Paid flag cleared"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID or period number"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/paid/{periodNumber} [delete]
// @Security BearerAuth
func (h *LoanHandler) UnmarkPaid(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	periodNumber, err := getIDParam(r, "periodNumber")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.UnmarkPaid(r.Context(), loanID, int(periodNumber)); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Paid flag cleared"})
}
