package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Operation string

const (
	OperationBuy      Operation = "buy"
	OperationSell     Operation = "sell"
	OperationTransfer Operation = "transfer"
)

// Transaction is a server-owned history record. The client only renders it.
type Transaction struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	ReceivedAmount decimal.Decimal `json:"received_amount"`
	Operation      Operation       `json:"operation"`
	SenderID       string          `json:"sender_id"`
	Date           time.Time       `json:"date"`
}
