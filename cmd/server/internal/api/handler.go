package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/store"
	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

// Instruments is the static catalog served over HTTP.
var Instruments = []models.Instrument{
	{Symbol: "EURUSD", Name: "Euro / US Dollar"},
	{Symbol: "USDJPY", Name: "US Dollar / Japanese Yen"},
	{Symbol: "BTCUSD", Name: "Bitcoin / US Dollar"},
}

// Handler serves the read-only REST surface: the instrument catalog and
// a point lookup against the price cache. It never touches the hub or
// the feed, so a busy fan-out cannot slow these requests down.
type Handler struct {
	store  store.Store
	logger *zap.Logger
}

func NewHandler(st store.Store, logger *zap.Logger) *Handler {
	return &Handler{store: st, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/instruments", h.listInstruments)
	mux.HandleFunc("/api/instruments/", h.getPrice)
}

func (h *Handler) listInstruments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, Instruments)
}

// getPrice handles GET /api/instruments/{symbol}/price.
func (h *Handler) getPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/instruments/")
	symbol, found := strings.CutSuffix(rest, "/price")
	if !found || symbol == "" || strings.Contains(symbol, "/") {
		http.NotFound(w, r)
		return
	}

	q, ok, err := h.store.Get(r.Context(), symbol)
	if err != nil {
		h.logger.Error("Price lookup failed", zap.String("symbol", symbol), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "price lookup failed"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"message": fmt.Sprintf("Price for %s not available yet.", symbol),
		})
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
