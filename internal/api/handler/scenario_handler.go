package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"loantracker/internal/api/handler/dto"
	"loantracker/internal/domain/scenario"
	"loantracker/internal/pkg/apperrors"
)

type ScenarioHandler struct {
	service scenario.ScenarioService
	logger  *slog.Logger
}

func NewScenarioHandler(s scenario.ScenarioService, l *slog.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		service: s,
		logger:  l.With("component", "ScenarioHandler"),
	}
}

func getScenarioIDFromURL(r *http.Request) (int64, error) {
	return getIDParam(r, "scenarioID")
}

// ListScenarios returns the saved scenarios for a loan.
//
// @Summary List scenarios
// @Description Returns the loan's saved scenarios, the Default scenario first. The Default scenario is materialized on first access.
// @Tags Scenarios
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {array} dto.ScenarioResponse "Scenarios successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/scenarios [get]
// @Security BearerAuth
func (h *ScenarioHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	scenarios, err := h.service.ListScenarios(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]dto.ScenarioResponse, len(scenarios))
	for i := range scenarios {
		resp[i] = dto.NewScenarioResponse(&scenarios[i], false)
	}
	respondJSON(w, http.StatusOK, resp)
}

// SaveScenario snapshots the loan, optionally with a what-if overlay.
//
// @Summary Save a scenario
// @Description Freezes the loan's current configuration and computed schedule under a name. An optional what-if overlay is applied and stored with the snapshot.
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.ScenarioCreateRequest true "Scenario creation payload"
// @Success 201 {object} dto.ScenarioResponse "Scenario successfully saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Scenario name already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/scenarios [post]
// @Security BearerAuth
func (h *ScenarioHandler) SaveScenario(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.ScenarioCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.SaveScenario(r.Context(), loanID, req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewScenarioResponse(created, false))
}

// GetScenario returns one scenario with its frozen snapshots.
//
// @Summary Retrieve a scenario
// @Description Returns the scenario including its frozen configuration and schedule JSON.
// @Tags Scenarios
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param scenarioID path int true "Scenario ID"
// @Success 200 {object} dto.ScenarioResponse "Scenario successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "Loan or scenario not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/scenarios/{scenarioID} [get]
// @Security BearerAuth
func (h *ScenarioHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	scenarioID, err := getScenarioIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	sc, err := h.service.GetScenario(r.Context(), loanID, scenarioID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewScenarioResponse(sc, true))
}

// UpdateScenario renames a scenario or refreshes its snapshot.
//
// @Summary Update a scenario
// @Description Renames the scenario, re-snapshots it with a new overlay, or refreshes the snapshot against the loan's current state when the payload is empty.
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param scenarioID path int true "Scenario ID"
// @Param request body dto.ScenarioUpdateRequest true "Scenario update payload"
// @Success 200 {object} dto.ScenarioResponse "Scenario successfully updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Loan or scenario not found"
// @Failure 409 {object} dto.ErrorResponse "Scenario name already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/scenarios/{scenarioID} [put]
// @Security BearerAuth
func (h *ScenarioHandler) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	scenarioID, err := getScenarioIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.ScenarioUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.UpdateScenario(r.Context(), loanID, scenarioID, req.ToParams())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewScenarioResponse(updated, false))
}

// DeleteScenario removes a saved scenario.
//
// @Summary Delete a scenario
// @Description Deletes the scenario. The Default scenario cannot be deleted.
// @Tags Scenarios
// @Param loanID path int true "Loan ID"
// @Param scenarioID path int true "Scenario ID"
// @Success 204 "Scenario successfully deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID or attempt to delete the Default scenario"
// @Failure 404 {object} dto.ErrorResponse "Loan or scenario not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/scenarios/{scenarioID} [delete]
// @Security BearerAuth
func (h *ScenarioHandler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	scenarioID, err := getScenarioIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeleteScenario(r.Context(), loanID, scenarioID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompareScenarios returns multiple scenarios side by side.
//
// @Summary Compare scenarios
// @Description Returns between 2 and 10 scenarios selected by the comma-separated `ids` query parameter, with snapshots included.
// @Tags Scenarios
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param ids query string true "Comma-separated scenario IDs (2 to 10)"
// @Success 200 {array} dto.ScenarioResponse "Scenarios successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID or ids parameter"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/scenarios/compare [get]
// @Security BearerAuth
func (h *ScenarioHandler) CompareScenarios(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	idsParam := r.URL.Query().Get("ids")
	if idsParam == "" {
		respondError(w, fmt.Errorf("%w: ids query parameter is required", apperrors.ErrInvalidArgument))
		return
	}

	var ids []int64
	for _, part := range strings.Split(idsParam, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			respondError(w, fmt.Errorf("%w: invalid scenario ID %q", apperrors.ErrInvalidArgument, part))
			return
		}
		ids = append(ids, id)
	}

	scenarios, err := h.service.CompareScenarios(r.Context(), loanID, ids)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]dto.ScenarioResponse, len(scenarios))
	for i := range scenarios {
		resp[i] = dto.NewScenarioResponse(&scenarios[i], true)
	}
	respondJSON(w, http.StatusOK, resp)
}
