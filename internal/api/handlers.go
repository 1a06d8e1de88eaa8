package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/ivpenchev/portfolio-tracker/internal/database"
	"github.com/ivpenchev/portfolio-tracker/internal/kafka"
	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/ivpenchev/portfolio-tracker/internal/valuation"
)

// Store is the subset of the database layer the handlers use
type Store interface {
	CreateHolding(ctx context.Context, h *models.Holding) error
	GetHoldingByID(ctx context.Context, id int) (*models.Holding, error)
	LoadHoldings(ctx context.Context, userID string) ([]*models.Holding, error)
	UpdateHolding(ctx context.Context, h *models.Holding) error
	DeleteHolding(ctx context.Context, id int, userID string) error
	GetPriceHistoryRange(ctx context.Context, symbol string, start, end time.Time) ([]*models.PricePoint, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db       Store
	engine   *valuation.Engine
	producer *kafka.Producer
}

// NewHandler creates a new Handler
func NewHandler(db Store, engine *valuation.Engine, producer *kafka.Producer) *Handler {
	return &Handler{
		db:       db,
		engine:   engine,
		producer: producer,
	}
}

// GetPortfolio handles GET /users/{userID}/portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userID"]

	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "as_of must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		asOf = parsed
	}

	snapshot, err := h.engine.PortfolioSnapshot(r.Context(), userID, asOf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// GetPortfolioHistory handles GET /users/{userID}/portfolio/history
func (h *Handler) GetPortfolioHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userID"]

	var window valuation.Window
	if raw := r.URL.Query().Get("months"); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil || months < 1 || months > 120 {
			http.Error(w, "months must be between 1 and 120", http.StatusBadRequest)
			return
		}
		window = valuation.TrailingWindow(time.Now(), months)
	}

	mode := valuation.SeriesMode(r.URL.Query().Get("mode"))
	switch mode {
	case "", valuation.ModeNearestPrice, valuation.ModeInterpolated:
	default:
		http.Error(w, "mode must be nearest or interpolated", http.StatusBadRequest)
		return
	}

	series, err := h.engine.HistorySeries(r.Context(), userID, window, mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, series)
}

// ListHoldings handles GET /users/{userID}/holdings
func (h *Handler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	holdings, err := h.db.LoadHoldings(r.Context(), vars["userID"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, holdings)
}

// GetHolding handles GET /users/{userID}/holdings/{id}
func (h *Handler) GetHolding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid holding id", http.StatusBadRequest)
		return
	}

	holding, err := h.db.GetHoldingByID(r.Context(), id)
	if errors.Is(err, database.ErrHoldingNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if holding.UserID != vars["userID"] {
		http.Error(w, "holding not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, holding)
}

// AddHolding handles POST /users/{userID}/holdings
func (h *Handler) AddHolding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var holding models.Holding
	if err := json.NewDecoder(r.Body).Decode(&holding); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	holding.UserID = vars["userID"]
	holding.Normalize()
	if err := holding.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.db.CreateHolding(r.Context(), &holding); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Publish Kafka event, best-effort
	if h.producer != nil {
		if err := h.producer.PublishHoldingAdded(r.Context(), &holding); err != nil {
			log.Printf("failed to publish holding added event: %v", err)
		}
	}

	respondJSON(w, http.StatusCreated, &holding)
}

// UpdateHolding handles PUT /users/{userID}/holdings/{id}
func (h *Handler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid holding id", http.StatusBadRequest)
		return
	}

	var holding models.Holding
	if err := json.NewDecoder(r.Body).Decode(&holding); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	holding.ID = id
	holding.UserID = vars["userID"]
	holding.Normalize()
	if err := holding.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.db.UpdateHolding(r.Context(), &holding); err != nil {
		if errors.Is(err, database.ErrHoldingNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishHoldingUpdated(r.Context(), &holding); err != nil {
			log.Printf("failed to publish holding updated event: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, &holding)
}

// RemoveHolding handles DELETE /users/{userID}/holdings/{id}
func (h *Handler) RemoveHolding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userID"]

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid holding id", http.StatusBadRequest)
		return
	}

	holding, err := h.db.GetHoldingByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrHoldingNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if holding.UserID != userID {
		http.Error(w, "holding not found", http.StatusNotFound)
		return
	}

	if err := h.db.DeleteHolding(r.Context(), id, userID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishHoldingRemoved(r.Context(), userID, holding); err != nil {
			log.Printf("failed to publish holding removed event: %v", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPriceHistory handles GET /prices/{symbol}/history. Serves the raw price
// series the dashboard charts against, defaulting to the trailing year.
func (h *Handler) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := strings.ToUpper(strings.TrimSpace(vars["symbol"]))

	end := time.Now()
	start := end.AddDate(-1, 0, 0)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end = parsed
	}
	if end.Before(start) {
		http.Error(w, "to must not precede from", http.StatusBadRequest)
		return
	}

	points, err := h.db.GetPriceHistoryRange(r.Context(), symbol, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, points)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
