package model

import (
	"fmt"
	"strings"
)

// Flow is a trade screen: transfer, exchange or card payment.
type Flow string

const (
	FlowTransfer Flow = "transfer"
	FlowExchange Flow = "exchange"
	FlowCard     Flow = "card"
)

func ParseFlow(s string) (Flow, bool) {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case FlowTransfer:
		return FlowTransfer, true
	case FlowExchange:
		return FlowExchange, true
	case FlowCard:
		return FlowCard, true
	default:
		return "", false
	}
}

// NeedsReceiver reports whether the flow sends funds to another address.
func (f Flow) NeedsReceiver() bool { return f == FlowTransfer }

// Route is a single backend mutation.
type Route string

const (
	RouteTransferPRX  Route = "/transaction/transfer/prx"
	RouteTransferUSDT Route = "/transaction/transfer/usdt"
	RouteBuy          Route = "/transaction/buy"
	RouteSell         Route = "/transaction/sell"
	RouteCardBuy      Route = "/payment/buy"
	RouteCardSell     Route = "/payment/sell"
)

func (r Route) Path() string { return string(r) }

// Operation reports how the route shows up in history.
func (r Route) Operation() Operation {
	switch r {
	case RouteBuy, RouteCardBuy:
		return OperationBuy
	case RouteSell, RouteCardSell:
		return OperationSell
	default:
		return OperationTransfer
	}
}

// ResolveRoute picks the mutation for a flow and the currency the user typed
// the amount in. Paying in USDT buys PRX; paying in PRX sells it.
func ResolveRoute(flow Flow, input Currency) (Route, error) {
	if !input.Valid() {
		return "", fmt.Errorf("unknown currency %q", input)
	}

	switch flow {
	case FlowTransfer:
		if input == USDT {
			return RouteTransferUSDT, nil
		}
		return RouteTransferPRX, nil
	case FlowExchange:
		if input == USDT {
			return RouteBuy, nil
		}
		return RouteSell, nil
	case FlowCard:
		if input == USDT {
			return RouteCardBuy, nil
		}
		return RouteCardSell, nil
	default:
		return "", fmt.Errorf("unknown flow %q", flow)
	}
}

// SubmitRequest is the body of every trade mutation.
type SubmitRequest struct {
	Route           Route  `json:"-"`
	IdempotencyKey  string `json:"-"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Equivalent      string `json:"equivalent"`
	SenderAddress   string `json:"sender_address"`
	ReceiverAddress string `json:"receiver_address,omitempty"`
}

// FlowState is a step of the submission sequence.
type FlowState int

const (
	StateIdle FlowState = iota
	StateValidating
	StateAuthenticating
	StateConfirming
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s FlowState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateAuthenticating:
		return "authenticating"
	case StateConfirming:
		return "confirming"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether a run has finished in s.
func (s FlowState) Terminal() bool {
	return s == StateIdle || s == StateSuccess || s == StateFailed
}
