package api

import "github.com/escrowdex/escrowdex/pkg/app/core/asset"

// API response types for REST endpoints and WebSocket messages

// ==============================
// REST Response Types
// ==============================

// PairInfo represents one registered trading pair
type PairInfo struct {
	ID    uint64 `json:"id"`
	Base  string `json:"base"`  // e.g., "0,XTK@0x..."
	Quote string `json:"quote"` // e.g., "0,YTK@0x..."
}

// OrderEntry represents one resting order in a book snapshot
type OrderEntry struct {
	ID      uint64         `json:"id"`
	Manager string         `json:"manager"`
	Base    asset.Quantity `json:"base"`
	Quote   asset.Quantity `json:"quote"`
	Price   string         `json:"price"` // reduced fraction, e.g. "2/1"
}

// BookSnapshot represents the full book of one pair in traversal order
type BookSnapshot struct {
	PairID    uint64       `json:"pairId"`
	Orders    []OrderEntry `json:"orders"`
	Timestamp int64        `json:"timestamp"` // Unix milliseconds
}

// WhitelistInfo reports gate membership for one account
type WhitelistInfo struct {
	Address     string `json:"address"`
	Whitelisted bool   `json:"whitelisted"`
}

// SubmitActionResponse is the response from action submission
type SubmitActionResponse struct {
	Status string `json:"status"` // "applied", "rejected"
}

// ErrorResponse is returned for all errors
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by client to subscribe to channels
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // e.g., ["book:1"]
}

// BookUpdate is broadcast after every committed book mutation
type BookUpdate struct {
	Type      string       `json:"type"` // "book"
	PairID    uint64       `json:"pairId"`
	Orders    []OrderEntry `json:"orders"`
	Timestamp int64        `json:"timestamp"`
}
