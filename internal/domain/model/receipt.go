package model

import "time"

type ReceiptStatus string

const (
	ReceiptSuccess ReceiptStatus = "success"
	ReceiptFailed  ReceiptStatus = "failed"
)

// Receipt records one submission attempt.
type Receipt struct {
	ID         string        `json:"id"`
	Route      Route         `json:"route"`
	Amount     string        `json:"amount"`
	Currency   Currency      `json:"currency"`
	Equivalent string        `json:"equivalent"`
	Sender     string        `json:"sender"`
	Receiver   string        `json:"receiver,omitempty"`
	Status     ReceiptStatus `json:"status"`
	TxID       string        `json:"tx_id,omitempty"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Summary is what the user is asked to confirm.
type Summary struct {
	Flow       Flow     `json:"flow"`
	Route      Route    `json:"route"`
	Amount     string   `json:"amount"`
	From       Currency `json:"from"`
	Equivalent string   `json:"equivalent"`
	To         Currency `json:"to"`
	Receiver   string   `json:"receiver,omitempty"`
}

// Event is published after a submission settles.
type Event struct {
	Type      string    `json:"type"`
	ReceiptID string    `json:"receipt_id"`
	Route     Route     `json:"route"`
	Amount    string    `json:"amount"`
	Currency  Currency  `json:"currency"`
	At        time.Time `json:"at"`
}
