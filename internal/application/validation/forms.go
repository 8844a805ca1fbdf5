package validation

import "prxwallet/internal/domain/model"

type TradeForm struct {
	Amount        string `json:"amount" validate:"required,amount"`
	InputCurrency string `json:"input_currency" validate:"required,currency"`
	SenderAddress string `json:"sender_address" validate:"required,address"`
}

type TransferForm struct {
	Amount          string `json:"amount" validate:"required,amount"`
	InputCurrency   string `json:"input_currency" validate:"required,currency"`
	SenderAddress   string `json:"sender_address" validate:"required,address"`
	ReceiverAddress string `json:"receiver_address" validate:"required,address,nefield=SenderAddress"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupForm struct {
	Name            string `json:"name" validate:"required,max=64"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type ChangePasswordForm struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=8,max=128,nefield=Current"`
	Confirm string `json:"confirm_password" validate:"required,eqfield=New"`
}

type PinForm struct {
	PIN     string `json:"pin" validate:"required,pin"`
	Confirm string `json:"confirm_pin" validate:"required,eqfield=PIN"`
}

// Trade validates the form for a trade flow. Only transfers need a receiver.
func (val *Validator) Trade(flow model.Flow, t *model.TransferData) error {
	if flow.NeedsReceiver() {
		return val.Struct(TransferForm{
			Amount:          t.Amount,
			InputCurrency:   string(t.Currency()),
			SenderAddress:   t.SenderAddress,
			ReceiverAddress: t.ReceiverAddress,
		})
	}
	return val.Struct(TradeForm{
		Amount:        t.Amount,
		InputCurrency: string(t.Currency()),
		SenderAddress: t.SenderAddress,
	})
}
