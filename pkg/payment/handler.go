package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fixtrack/fixtrack/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type RecordDTO struct {
	ItemID      string `json:"itemId"`
	YearMonth   string `json:"yearMonth"`
	IsPaid      bool   `json:"isPaid"`
	PaidDate    string `json:"paidDate,omitempty"`
	Method      string `json:"method,omitempty"`
	Memo        string `json:"memo,omitempty"`
	MonthsPaid  int    `json:"monthsPaid"`
	GroupID     string `json:"paymentGroupId,omitempty"`
	PrepaidFrom string `json:"prepaidFromYearMonth,omitempty"`
}

// UpsertDTO is a partial update of one ledger cell. Absent fields keep their
// stored value; a present but empty paidDate clears the date.
type UpsertDTO struct {
	ItemID     string  `json:"itemId"`
	YearMonth  string  `json:"yearMonth"`
	IsPaid     *bool   `json:"isPaid,omitempty"`
	PaidDate   *string `json:"paidDate,omitempty"`
	Method     *string `json:"method,omitempty"`
	Memo       *string `json:"memo,omitempty"`
	MonthsPaid *int    `json:"monthsPaid,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ym, err := cellParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.service.GetRecord(r.Context(), itemId, ym)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "Payment record not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(RecordToDTO(*record)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto UpsertDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ItemID == "" {
		http.Error(w, "Missing item id in request body", http.StatusBadRequest)
		return
	}
	ym, err := ParseYearMonth(dto.YearMonth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	patch, err := dtoToPatch(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.service.UpsertRecord(r.Context(), dto.ItemID, ym, patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(RecordToDTO(record)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DeleteCell(w http.ResponseWriter, r *http.Request) {
	itemId, ym, err := cellParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.DeletePayment(r.Context(), itemId, ym); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetPaid(w http.ResponseWriter, r *http.Request) {
	log.Debug("Toggling payment state")
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		ItemID    string `json:"itemId"`
		YearMonth string `json:"yearMonth"`
		IsPaid    bool   `json:"isPaid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.ItemID == "" {
		http.Error(w, "Missing item id in request body", http.StatusBadRequest)
		return
	}
	ym, err := ParseYearMonth(body.YearMonth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SetPaid(r.Context(), body.ItemID, ym, body.IsPaid); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) SaveDetail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		ItemID     string `json:"itemId"`
		YearMonth  string `json:"yearMonth"`
		IsPaid     bool   `json:"isPaid"`
		PaidDate   string `json:"paidDate,omitempty"`
		MonthsPaid int    `json:"monthsPaid"`
		Method     string `json:"method,omitempty"`
		Memo       string `json:"memo,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.ItemID == "" {
		http.Error(w, "Missing item id in request body", http.StatusBadRequest)
		return
	}
	ym, err := ParseYearMonth(body.YearMonth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	paidDate, err := parsePaidDate(body.PaidDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.MonthsPaid == 0 {
		body.MonthsPaid = 1
	}

	records, err := h.service.SaveDetail(r.Context(), body.ItemID, ym, Detail{
		IsPaid:     body.IsPaid,
		PaidDate:   paidDate,
		MonthsPaid: body.MonthsPaid,
		Method:     Method(body.Method),
		Memo:       body.Memo,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(recordsToDTO(records)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) FindGroup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ym, err := cellParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.service.FindGroup(r.Context(), itemId, ym)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(recordsToDTO(records)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) ApplyGroup(w http.ResponseWriter, r *http.Request) {
	log.Debug("Applying payment group")
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		ItemID     string `json:"itemId"`
		YearMonth  string `json:"yearMonth"`
		MonthsPaid int    `json:"monthsPaid"`
		PaidDate   string `json:"paidDate,omitempty"`
		Method     string `json:"method,omitempty"`
		Memo       string `json:"memo,omitempty"`
		GroupID    string `json:"paymentGroupId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.ItemID == "" {
		http.Error(w, "Missing item id in request body", http.StatusBadRequest)
		return
	}
	ym, err := ParseYearMonth(body.YearMonth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	paidDate, err := parsePaidDate(body.PaidDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.service.ApplyGroup(r.Context(), body.ItemID, ym, body.MonthsPaid, paidDate, Method(body.Method), body.Memo, body.GroupID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(recordsToDTO(records)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) RemoveGroup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groupId := mux.Vars(r)["groupId"]

	records, err := h.service.RemoveGroup(r.Context(), groupId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(recordsToDTO(records)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		http.Error(w, "Payment record not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidMonthsPaid), errors.Is(err, ErrDateOutOfRange):
		w.WriteHeader(http.StatusBadRequest)
		if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()}); encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func cellParams(r *http.Request) (string, YearMonth, error) {
	itemId := r.URL.Query().Get("itemId")
	if itemId == "" {
		return "", YearMonth{}, errors.New("missing itemId query parameter")
	}
	ym, err := ParseYearMonth(r.URL.Query().Get("yearMonth"))
	if err != nil {
		return "", YearMonth{}, err
	}
	return itemId, ym, nil
}

func parsePaidDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(paidDateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func dtoToPatch(dto UpsertDTO) (RecordPatch, error) {
	patch := RecordPatch{
		IsPaid:     dto.IsPaid,
		Memo:       dto.Memo,
		MonthsPaid: dto.MonthsPaid,
	}
	if dto.Method != nil {
		method := Method(*dto.Method)
		patch.Method = &method
	}
	if dto.PaidDate != nil {
		if *dto.PaidDate == "" {
			patch.ClearPaidDate = true
		} else {
			parsed, err := parsePaidDate(*dto.PaidDate)
			if err != nil {
				return RecordPatch{}, err
			}
			patch.PaidDate = parsed
		}
	}
	return patch, nil
}

func RecordToDTO(record PaymentRecord) RecordDTO {
	dto := RecordDTO{
		ItemID:     record.ItemID,
		YearMonth:  record.YearMonth.String(),
		IsPaid:     record.IsPaid,
		Method:     string(record.Method),
		Memo:       record.Memo,
		MonthsPaid: record.MonthsPaid,
		GroupID:    record.GroupID,
	}
	if record.PaidDate != nil {
		dto.PaidDate = record.PaidDate.Format(paidDateLayout)
	}
	if record.PrepaidFrom != nil {
		dto.PrepaidFrom = record.PrepaidFrom.String()
	}
	return dto
}

func DTOToRecord(dto RecordDTO) (PaymentRecord, error) {
	ym, err := ParseYearMonth(dto.YearMonth)
	if err != nil {
		return PaymentRecord{}, err
	}
	paidDate, err := parsePaidDate(dto.PaidDate)
	if err != nil {
		return PaymentRecord{}, err
	}
	record := PaymentRecord{
		ItemID:     dto.ItemID,
		YearMonth:  ym,
		IsPaid:     dto.IsPaid,
		PaidDate:   paidDate,
		Method:     Method(dto.Method),
		Memo:       dto.Memo,
		MonthsPaid: dto.MonthsPaid,
		GroupID:    dto.GroupID,
	}
	if dto.PrepaidFrom != "" {
		from, err := ParseYearMonth(dto.PrepaidFrom)
		if err != nil {
			return PaymentRecord{}, err
		}
		record.PrepaidFrom = &from
	}
	if record.MonthsPaid == 0 {
		record.MonthsPaid = 1
	}
	return record, nil
}

func recordsToDTO(records []PaymentRecord) []RecordDTO {
	dtos := make([]RecordDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, RecordToDTO(record))
	}
	return dtos
}
