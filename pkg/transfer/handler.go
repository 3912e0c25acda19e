package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fixtrack/fixtrack/internal/rest"
	"github.com/fixtrack/fixtrack/pkg/item"
	"github.com/fixtrack/fixtrack/pkg/payment"
)

// SnapshotDTO is the export document. On import the two collection fields are
// pointers so that an absent or non-array field can be told apart from an
// empty one and rejected wholesale.
type SnapshotDTO struct {
	Items      *[]item.ItemDTO      `json:"items"`
	Payments   *[]payment.RecordDTO `json:"payments"`
	ExportedAt time.Time            `json:"exportedAt"`
}

type ImportResultDTO struct {
	ItemsImported    int `json:"itemsImported"`
	ItemsSkipped     int `json:"itemsSkipped"`
	PaymentsImported int `json:"paymentsImported"`
	PaymentsSkipped  int `json:"paymentsSkipped"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Export(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]item.ItemDTO, 0, len(snapshot.Items))
	for _, it := range snapshot.Items {
		items = append(items, item.ItemToDTO(it))
	}
	payments := make([]payment.RecordDTO, 0, len(snapshot.Payments))
	for _, record := range snapshot.Payments {
		payments = append(payments, payment.RecordToDTO(record))
	}

	filename := fmt.Sprintf("fixed-expenses-%s.json", snapshot.ExportedAt.Format("2006-01"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SnapshotDTO{
		Items:      &items,
		Payments:   &payments,
		ExportedAt: snapshot.ExportedAt,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	mode := ImportMode(r.URL.Query().Get("mode"))
	if !mode.Valid() {
		writeBadRequest(w, "Invalid import mode", "mode must be overwrite or merge")
		return
	}

	var dto SnapshotDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, ErrInvalidFormat.Error(), err.Error())
		return
	}
	if dto.Items == nil || dto.Payments == nil {
		writeBadRequest(w, ErrInvalidFormat.Error(), "items and payments must both be present arrays")
		return
	}

	items := make([]item.Item, 0, len(*dto.Items))
	for _, itemDTO := range *dto.Items {
		items = append(items, item.DTOToItem(itemDTO))
	}
	payments := make([]payment.PaymentRecord, 0, len(*dto.Payments))
	for _, recordDTO := range *dto.Payments {
		record, err := payment.DTOToRecord(recordDTO)
		if err != nil {
			writeBadRequest(w, ErrInvalidFormat.Error(), err.Error())
			return
		}
		payments = append(payments, record)
	}

	result, err := h.service.Import(r.Context(), items, payments, mode)
	if err != nil {
		if errors.Is(err, ErrInvalidMode) || errors.Is(err, ErrInvalidFormat) {
			writeBadRequest(w, err.Error(), "")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ImportResultDTO(result)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeBadRequest(w http.ResponseWriter, message string, details string) {
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details})
}
