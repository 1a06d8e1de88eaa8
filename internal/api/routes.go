package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Portfolio and holdings routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/users/{userID}/portfolio", handler.GetPortfolio).Methods("GET")
	api.HandleFunc("/users/{userID}/portfolio/history", handler.GetPortfolioHistory).Methods("GET")
	api.HandleFunc("/users/{userID}/holdings", handler.ListHoldings).Methods("GET")
	api.HandleFunc("/users/{userID}/holdings", handler.AddHolding).Methods("POST")
	api.HandleFunc("/users/{userID}/holdings/{id}", handler.GetHolding).Methods("GET")
	api.HandleFunc("/users/{userID}/holdings/{id}", handler.UpdateHolding).Methods("PUT")
	api.HandleFunc("/users/{userID}/holdings/{id}", handler.RemoveHolding).Methods("DELETE")
	api.HandleFunc("/prices/{symbol}/history", handler.GetPriceHistory).Methods("GET")

	return r
}
