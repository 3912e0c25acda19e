package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Expense items
	r.HandleFunc("/api/item", deps.ItemHandler.List).Methods("GET")
	r.HandleFunc("/api/item", deps.ItemHandler.Create).Methods("POST")
	r.HandleFunc("/api/item/{itemId}", deps.ItemHandler.Update).Methods("PUT")
	r.HandleFunc("/api/item/{itemId}", deps.ItemHandler.Deactivate).Methods("DELETE")
	r.HandleFunc("/api/item/{itemId}/active", deps.ItemHandler.SetActive).Methods("PUT")

	// Payment ledger
	r.HandleFunc("/api/payment", deps.PaymentHandler.GetRecord).Methods("GET")
	r.HandleFunc("/api/payment", deps.PaymentHandler.Upsert).Methods("PUT")
	r.HandleFunc("/api/payment", deps.PaymentHandler.DeleteCell).Methods("DELETE")
	r.HandleFunc("/api/payment/paid", deps.PaymentHandler.SetPaid).Methods("PUT")
	r.HandleFunc("/api/payment/detail", deps.PaymentHandler.SaveDetail).Methods("PUT")

	// Prepayment groups
	r.HandleFunc("/api/payment/group", deps.PaymentHandler.FindGroup).Methods("GET")
	r.HandleFunc("/api/payment/group", deps.PaymentHandler.ApplyGroup).Methods("POST")
	r.HandleFunc("/api/payment/group/{groupId}", deps.PaymentHandler.RemoveGroup).Methods("DELETE")

	// Stats
	r.HandleFunc("/api/stats/yearly", deps.StatsHandler.GetYearlySummary).Queries("year", "{year}").Methods("GET")
	r.HandleFunc("/api/stats/monthly", deps.StatsHandler.GetMonthlyCashFlow).Queries("year", "{year}").Methods("GET")

	// UI preferences
	r.HandleFunc("/api/preferences", deps.PreferencesHandler.Get).Methods("GET")
	r.HandleFunc("/api/preferences", deps.PreferencesHandler.Put).Methods("PUT")

	// Import/export
	r.HandleFunc("/api/transfer/export", deps.TransferHandler.Export).Methods("GET")
	r.HandleFunc("/api/transfer/import", deps.TransferHandler.Import).Methods("POST")
	r.HandleFunc("/api/transfer", deps.TransferHandler.Reset).Methods("DELETE")
}
