package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"loantracker/internal/api/handler/dto"
	"loantracker/internal/domain/scenario"
	"loantracker/internal/domain/schedule"
	"loantracker/internal/pkg/apperrors"
)

type MockScenarioService struct {
	mock.Mock
}

func (m *MockScenarioService) ListScenarios(ctx context.Context, loanID int64) ([]scenario.Scenario, error) {
	ret := m.Called(ctx, loanID)
	if ret.Get(0) != nil {
		return ret.Get(0).([]scenario.Scenario), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockScenarioService) SaveScenario(ctx context.Context, loanID int64, params scenario.SaveParams) (*scenario.Scenario, error) {
	ret := m.Called(ctx, loanID, params)
	if ret.Get(0) != nil {
		return ret.Get(0).(*scenario.Scenario), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockScenarioService) GetScenario(ctx context.Context, loanID, scenarioID int64) (*scenario.Scenario, error) {
	ret := m.Called(ctx, loanID, scenarioID)
	if ret.Get(0) != nil {
		return ret.Get(0).(*scenario.Scenario), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockScenarioService) UpdateScenario(ctx context.Context, loanID, scenarioID int64, params scenario.UpdateParams) (*scenario.Scenario, error) {
	ret := m.Called(ctx, loanID, scenarioID, params)
	if ret.Get(0) != nil {
		return ret.Get(0).(*scenario.Scenario), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func (m *MockScenarioService) DeleteScenario(ctx context.Context, loanID, scenarioID int64) error {
	return m.Called(ctx, loanID, scenarioID).Error(0)
}

func (m *MockScenarioService) CompareScenarios(ctx context.Context, loanID int64, scenarioIDs []int64) ([]scenario.Scenario, error) {
	ret := m.Called(ctx, loanID, scenarioIDs)
	if ret.Get(0) != nil {
		return ret.Get(0).([]scenario.Scenario), ret.Error(1)
	}
	return nil, ret.Error(1)
}

func testScenario(id int64, name string, isDefault bool) scenario.Scenario {
	return scenario.Scenario{
		ID:                  id,
		LoanID:              1,
		Name:                name,
		IsDefault:           isDefault,
		TotalInterest:       decimal.RequireFromString("1794.16"),
		TotalPaid:           decimal.RequireFromString("31844.16"),
		PayoffDate:          schedule.Date(2028, time.February, 18),
		ActualNumRepayments: 52,
		ConfigJSON:          json.RawMessage(`{}`),
		ScheduleJSON:        json.RawMessage(`[]`),
	}
}

func TestScenarioHandlerListScenarios(t *testing.T) {
	mockService := new(MockScenarioService)
	handler := NewScenarioHandler(mockService, testLogger)

	scenarios := []scenario.Scenario{
		testScenario(4, scenario.DefaultName, true),
		testScenario(5, "Lump sum", false),
	}
	mockService.On("ListScenarios", mock.Anything, int64(1)).Return(scenarios, nil)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/loans/1/scenarios", nil), "loanID", "1")
	rec := httptest.NewRecorder()

	handler.ListScenarios(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.ScenarioResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
	assert.True(t, resp[0].IsDefault)
	assert.Nil(t, resp[0].Schedule)
	mockService.AssertExpectations(t)
}

func TestScenarioHandlerSaveScenario(t *testing.T) {
	t.Run("saves with overlay", func(t *testing.T) {
		mockService := new(MockScenarioService)
		handler := NewScenarioHandler(mockService, testLogger)

		created := testScenario(6, "Extra 5k", false)
		mockService.On("SaveScenario", mock.Anything, int64(1), mock.MatchedBy(func(p scenario.SaveParams) bool {
			return p.Name == "Extra 5k" && p.Overlay != nil && len(p.Overlay.AdditionalExtraRepayments) == 1
		})).Return(&created, nil)

		body := `{"name":"Extra 5k","whatif":{"additionalExtraRepayments":[{"paymentDate":"2026-09-01","amount":"5000"}]}}`
		req := withURLParams(httptest.NewRequest(http.MethodPost, "/loans/1/scenarios", strings.NewReader(body)), "loanID", "1")
		rec := httptest.NewRecorder()

		handler.SaveScenario(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.ScenarioResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "6", resp.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		mockService := new(MockScenarioService)
		handler := NewScenarioHandler(mockService, testLogger)

		req := withURLParams(httptest.NewRequest(http.MethodPost, "/loans/1/scenarios", strings.NewReader(`{"name":""}`)), "loanID", "1")
		rec := httptest.NewRecorder()

		handler.SaveScenario(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "SaveScenario", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("maps duplicate name to conflict", func(t *testing.T) {
		mockService := new(MockScenarioService)
		handler := NewScenarioHandler(mockService, testLogger)

		mockService.On("SaveScenario", mock.Anything, int64(1), mock.Anything).Return(nil, apperrors.ErrAlreadyExists)

		req := withURLParams(httptest.NewRequest(http.MethodPost, "/loans/1/scenarios", strings.NewReader(`{"name":"Lump sum"}`)), "loanID", "1")
		rec := httptest.NewRecorder()

		handler.SaveScenario(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestScenarioHandlerGetScenario(t *testing.T) {
	mockService := new(MockScenarioService)
	handler := NewScenarioHandler(mockService, testLogger)

	sc := testScenario(5, "Lump sum", false)
	mockService.On("GetScenario", mock.Anything, int64(1), int64(5)).Return(&sc, nil)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/loans/1/scenarios/5", nil), "loanID", "1", "scenarioID", "5")
	rec := httptest.NewRecorder()

	handler.GetScenario(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ScenarioResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotNil(t, resp.Schedule)
	mockService.AssertExpectations(t)
}

func TestScenarioHandlerDeleteScenario(t *testing.T) {
	t.Run("deletes named scenario", func(t *testing.T) {
		mockService := new(MockScenarioService)
		handler := NewScenarioHandler(mockService, testLogger)

		mockService.On("DeleteScenario", mock.Anything, int64(1), int64(5)).Return(nil)

		req := withURLParams(httptest.NewRequest(http.MethodDelete, "/loans/1/scenarios/5", nil), "loanID", "1", "scenarioID", "5")
		rec := httptest.NewRecorder()

		handler.DeleteScenario(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("refuses default scenario", func(t *testing.T) {
		mockService := new(MockScenarioService)
		handler := NewScenarioHandler(mockService, testLogger)

		mockService.On("DeleteScenario", mock.Anything, int64(1), int64(4)).Return(apperrors.ErrValidation)

		req := withURLParams(httptest.NewRequest(http.MethodDelete, "/loans/1/scenarios/4", nil), "loanID", "1", "scenarioID", "4")
		rec := httptest.NewRecorder()

		handler.DeleteScenario(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestScenarioHandlerCompareScenarios(t *testing.T) {
	t.Run("parses ids and compares", func(t *testing.T) {
		mockService := new(MockScenarioService)
		handler := NewScenarioHandler(mockService, testLogger)

		scenarios := []scenario.Scenario{
			testScenario(4, scenario.DefaultName, true),
			testScenario(5, "Lump sum", false),
		}
		mockService.On("CompareScenarios", mock.Anything, int64(1), []int64{4, 5}).Return(scenarios, nil)

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/loans/1/scenarios/compare?ids=4,5", nil), "loanID", "1")
		rec := httptest.NewRecorder()

		handler.CompareScenarios(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.ScenarioResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp, 2)
		assert.NotNil(t, resp[0].Schedule)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects missing ids parameter", func(t *testing.T) {
		mockService := new(MockScenarioService)
		handler := NewScenarioHandler(mockService, testLogger)

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/loans/1/scenarios/compare", nil), "loanID", "1")
		rec := httptest.NewRecorder()

		handler.CompareScenarios(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CompareScenarios", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects non numeric ids", func(t *testing.T) {
		mockService := new(MockScenarioService)
		handler := NewScenarioHandler(mockService, testLogger)

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/loans/1/scenarios/compare?ids=4,abc", nil), "loanID", "1")
		rec := httptest.NewRecorder()

		handler.CompareScenarios(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
