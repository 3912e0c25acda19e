package item

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fixtrack/fixtrack/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ItemDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    *int      `json:"amount"`
	Note      string    `json:"note,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	includeInactive := r.URL.Query().Has("includeInactive")

	items, err := h.service.List(r.Context(), includeInactive)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, ItemToDTO(item))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new expense item")
	w.Header().Set("Content-Type", "application/json")

	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), DTOToItem(dto))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ItemToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId := mux.Vars(r)["itemId"]

	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID == "" || dto.ID != itemId {
		http.Error(w, "Invalid item id in request body", http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), DTOToItem(dto))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ItemToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Deactivate is the "delete" action of the UI: it only flips the active flag
// so that ledger history survives.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	itemId := mux.Vars(r)["itemId"]

	if _, err := h.service.SetActive(r.Context(), itemId, false); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId := mux.Vars(r)["itemId"]

	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.service.SetActive(r.Context(), itemId, body.Active); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		http.Error(w, "Item not found", http.StatusNotFound)
	case errors.Is(err, ErrEmptyName), errors.Is(err, ErrDuplicateName), errors.Is(err, ErrNegativeAmount):
		w.WriteHeader(http.StatusBadRequest)
		if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()}); encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ItemToDTO(item Item) ItemDTO {
	return ItemDTO{
		ID:        item.ID,
		Name:      item.Name,
		Amount:    item.Amount,
		Note:      item.Note,
		Active:    item.Active,
		CreatedAt: item.CreatedAt,
	}
}

func DTOToItem(dto ItemDTO) Item {
	return Item{
		ID:        dto.ID,
		Name:      dto.Name,
		Amount:    dto.Amount,
		Note:      dto.Note,
		Active:    dto.Active,
		CreatedAt: dto.CreatedAt,
	}
}
