package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/escrowdex/escrowdex/pkg/app/core/action"
	"github.com/escrowdex/escrowdex/pkg/app/core/orderbook"
	"github.com/escrowdex/escrowdex/pkg/app/exchange"
)

// Server handles REST API and WebSocket connections
type Server struct {
	app    *exchange.App
	router *mux.Router
	hub    *Hub // WebSocket hub
}

// NewServer creates a new API server
func NewServer(app *exchange.App) *Server {
	s := &Server{
		app:    app,
		router: mux.NewRouter(),
		hub:    NewHub(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API v1 routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Signed action submission
	api.HandleFunc("/actions", s.handleSubmitAction).Methods("POST")

	// Pair and book endpoints
	api.HandleFunc("/pairs", s.handleGetPairs).Methods("GET")
	api.HandleFunc("/pairs/{id}/book", s.handleGetBook).Methods("GET")

	// Whitelist endpoint
	api.HandleFunc("/whitelist/{address}", s.handleGetWhitelist).Methods("GET")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	// Start WebSocket hub
	go s.hub.Run()

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(s.router)

	log.Printf("[api] server starting on %s", addr)
	return http.ListenAndServe(addr, handler)
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	act, err := action.Parse(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid action", err.Error())
		return
	}

	if err := s.app.ApplyAction(act); err != nil {
		respondError(w, statusFor(err), "action rejected", err.Error())
		return
	}

	log.Printf("[api] action applied: kind=%s bytes=%d", act.Kind, len(body))
	respondJSON(w, SubmitActionResponse{Status: "applied"})
}

func (s *Server) handleGetPairs(w http.ResponseWriter, r *http.Request) {
	pairs := s.app.Pairs()

	response := make([]PairInfo, len(pairs))
	for i, p := range pairs {
		response[i] = PairInfo{
			ID:    p.ID,
			Base:  p.Base.String(),
			Quote: p.Quote.String(),
		}
	}

	respondJSON(w, response)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pairID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid pair id", err.Error())
		return
	}

	orders, err := s.app.BookOrders(pairID)
	if err != nil {
		respondError(w, statusFor(err), "book unavailable", err.Error())
		return
	}

	respondJSON(w, BookSnapshot{
		PairID:    pairID,
		Orders:    orderEntries(orders),
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *Server) handleGetWhitelist(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	addressStr := vars["address"]

	if !common.IsHexAddress(addressStr) {
		respondError(w, http.StatusBadRequest, "invalid address", "")
		return
	}

	addr := common.HexToAddress(addressStr)
	respondJSON(w, WhitelistInfo{
		Address:     addr.Hex(),
		Whitelisted: s.app.IsWhitelisted(addr),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Broadcast Methods
// ==============================

// BroadcastBook pushes a book snapshot to subscribed WebSocket clients.
// Wire it to the engine's OnBookUpdate hook.
func (s *Server) BroadcastBook(pairID uint64, orders []orderbook.Order) {
	update := BookUpdate{
		Type:      "book",
		PairID:    pairID,
		Orders:    orderEntries(orders),
		Timestamp: time.Now().UnixMilli(),
	}
	s.hub.BroadcastToChannel("book:"+strconv.FormatUint(pairID, 10), update)
}

// ==============================
// Helper Functions
// ==============================

func orderEntries(orders []orderbook.Order) []OrderEntry {
	out := make([]OrderEntry, len(orders))
	for i, o := range orders {
		out[i] = OrderEntry{
			ID:      o.ID,
			Manager: o.Manager.Hex(),
			Base:    o.Base,
			Quote:   o.Quote,
			Price:   o.Price.String(),
		}
	}
	return out
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, exchange.ErrPairNotFound), errors.Is(err, exchange.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, exchange.ErrNotAuthorized), errors.Is(err, exchange.ErrNotWhitelisted):
		return http.StatusForbidden
	case errors.Is(err, exchange.ErrBadSignature):
		return http.StatusUnauthorized
	case errors.Is(err, exchange.ErrUnableToFill), errors.Is(err, exchange.ErrAmountMismatch),
		errors.Is(err, exchange.ErrSelfTrade):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
