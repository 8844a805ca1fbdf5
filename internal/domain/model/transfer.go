package model

// TransferData is the editable form behind every trade screen.
type TransferData struct {
	Amount          string   `json:"amount"`
	SenderAddress   string   `json:"sender_address"`
	ReceiverAddress string   `json:"receiver_address,omitempty"`
	InputCurrency   Currency `json:"input_currency,omitempty"`
}

// Currency returns the input currency, PRX when unset.
func (t *TransferData) Currency() Currency {
	if t.InputCurrency == "" {
		return PRX
	}
	return t.InputCurrency
}

// Reset clears the amount and receiver after a successful submit.
// The sender address stays.
func (t *TransferData) Reset() {
	t.Amount = ""
	t.ReceiverAddress = ""
}
