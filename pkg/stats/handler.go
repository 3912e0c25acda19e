package stats

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fixtrack/fixtrack/internal/rest"
)

type YearlySummaryDTO struct {
	Year       int `json:"year"`
	PaidCount  int `json:"paidCount"`
	TotalCount int `json:"totalCount"`
	Percentage int `json:"percentage"`
	PaidAmount int `json:"paidAmount"`
}

type MonthlyTotalDTO struct {
	Month int `json:"month"`
	Total int `json:"total"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) GetYearlySummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	summary, err := h.service.YearlySummary(r.Context(), year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(YearlySummaryDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetMonthlyCashFlow(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	totals, err := h.service.MonthlyCashFlow(r.Context(), year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]MonthlyTotalDTO, 0, len(totals))
	for _, total := range totals {
		dtos = append(dtos, MonthlyTotalDTO{Month: int(total.Month), Total: total.Total})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	yearString := r.URL.Query().Get("year")
	year, err := strconv.Atoi(yearString)
	if err != nil || year < 1 || year > 9999 {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid year",
			Details: "year must be a four digit number",
		})
		return 0, false
	}
	return year, true
}
