package preferences

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fixtrack/fixtrack/internal/rest"
)

type PreferencesDTO struct {
	CurrentYear int    `json:"currentYear"`
	Filter      string `json:"filter"`
	Sort        string `json:"sort"`
	Search      string `json:"search"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	prefs, err := h.service.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(toDTO(prefs)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto PreferencesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stored, err := h.service.Put(r.Context(), Preferences{
		CurrentYear: dto.CurrentYear,
		Filter:      Filter(dto.Filter),
		Sort:        Sort(dto.Sort),
		Search:      dto.Search,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidPreference) {
			w.WriteHeader(http.StatusBadRequest)
			if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()}); encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(toDTO(stored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func toDTO(prefs Preferences) PreferencesDTO {
	return PreferencesDTO{
		CurrentYear: prefs.CurrentYear,
		Filter:      string(prefs.Filter),
		Sort:        string(prefs.Sort),
		Search:      prefs.Search,
	}
}
