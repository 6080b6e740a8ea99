package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"loantracker/internal/domain/scenario"
)

type ScenarioCreateRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	WhatIf      *WhatIfRequest `json:"whatif,omitempty"`
}

func (r *ScenarioCreateRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if r.WhatIf != nil {
		if err := r.WhatIf.Validate(); err != nil {
			return fmt.Errorf("whatif: %w", err)
		}
	}
	return nil
}

func (r *ScenarioCreateRequest) ToParams() scenario.SaveParams {
	params := scenario.SaveParams{Name: r.Name, Description: r.Description}
	if r.WhatIf != nil {
		overlay := r.WhatIf.ToOverlay()
		params.Overlay = &overlay
	}
	return params
}

type ScenarioUpdateRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	WhatIf      *WhatIfRequest `json:"whatif,omitempty"`
}

func (r *ScenarioUpdateRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if r.WhatIf != nil {
		if err := r.WhatIf.Validate(); err != nil {
			return fmt.Errorf("whatif: %w", err)
		}
	}
	return nil
}

func (r *ScenarioUpdateRequest) ToParams() scenario.UpdateParams {
	params := scenario.UpdateParams{Name: r.Name, Description: r.Description}
	if r.WhatIf != nil {
		overlay := r.WhatIf.ToOverlay()
		params.Overlay = &overlay
	}
	return params
}

type ScenarioResponse struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	IsDefault           bool            `json:"isDefault"`
	TotalInterest       string          `json:"totalInterest"`
	TotalPaid           string          `json:"totalPaid"`
	PayoffDate          string          `json:"payoffDate"`
	ActualNumRepayments int             `json:"actualNumRepayments"`
	Config              json.RawMessage `json:"config,omitempty"`
	Schedule            json.RawMessage `json:"schedule,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// NewScenarioResponse renders the listing shape; pass includeSnapshots
// to inline the frozen config and schedule JSON.
func NewScenarioResponse(sc *scenario.Scenario, includeSnapshots bool) ScenarioResponse {
	resp := ScenarioResponse{
		ID:                  strconv.FormatInt(sc.ID, 10),
		Name:                sc.Name,
		Description:         sc.Description,
		IsDefault:           sc.IsDefault,
		TotalInterest:       formatMoney(sc.TotalInterest),
		TotalPaid:           formatMoney(sc.TotalPaid),
		PayoffDate:          sc.PayoffDate.Format(time.DateOnly),
		ActualNumRepayments: sc.ActualNumRepayments,
		CreatedAt:           sc.CreatedAt,
		UpdatedAt:           sc.UpdatedAt,
	}
	if includeSnapshots {
		resp.Config = sc.ConfigJSON
		resp.Schedule = sc.ScheduleJSON
	}
	return resp
}
