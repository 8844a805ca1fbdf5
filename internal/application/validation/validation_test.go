package validation

import (
	"errors"
	"testing"

	"prxwallet/internal/domain/model"
)

const (
	sender   = "PRXa1b2c3d4e5f6g7h8i9j0k1l2m3n4"
	receiver = "PRXz9y8x7w6v5u4t3s2r1q0p9o8n7m6"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *model.ValidationError, got %v", err)
	}
	return ve.Fields
}

func TestTradeTransfer(t *testing.T) {
	val := New()

	ok := &model.TransferData{Amount: "1.5", SenderAddress: sender, ReceiverAddress: receiver, InputCurrency: model.USDT}
	if err := val.Trade(model.FlowTransfer, ok); err != nil {
		t.Fatalf("valid transfer rejected: %v", err)
	}

	tests := []struct {
		name  string
		data  model.TransferData
		field string
	}{
		{"missing amount", model.TransferData{SenderAddress: sender, ReceiverAddress: receiver}, "amount"},
		{"zero amount", model.TransferData{Amount: "0", SenderAddress: sender, ReceiverAddress: receiver}, "amount"},
		{"text amount", model.TransferData{Amount: "ten", SenderAddress: sender, ReceiverAddress: receiver}, "amount"},
		{"missing receiver", model.TransferData{Amount: "1", SenderAddress: sender}, "receiver_address"},
		{"short receiver", model.TransferData{Amount: "1", SenderAddress: sender, ReceiverAddress: "abc"}, "receiver_address"},
		{"self transfer", model.TransferData{Amount: "1", SenderAddress: sender, ReceiverAddress: sender}, "receiver_address"},
		{"missing sender", model.TransferData{Amount: "1", ReceiverAddress: receiver}, "sender_address"},
		{"bad currency", model.TransferData{Amount: "1", SenderAddress: sender, ReceiverAddress: receiver, InputCurrency: "BTC"}, "input_currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data
			got := fields(t, val.Trade(model.FlowTransfer, &data))
			if _, ok := got[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, got)
			}
		})
	}
}

func TestTradeExchangeIgnoresReceiver(t *testing.T) {
	val := New()
	data := &model.TransferData{Amount: "3", SenderAddress: sender}
	if err := val.Trade(model.FlowExchange, data); err != nil {
		t.Fatalf("exchange without receiver rejected: %v", err)
	}
	if err := val.Trade(model.FlowCard, data); err != nil {
		t.Fatalf("card without receiver rejected: %v", err)
	}
}

func TestAccountForms(t *testing.T) {
	val := New()

	got := fields(t, val.Struct(LoginForm{Email: "not-an-email"}))
	if got["email"] != "email must be a valid email address" {
		t.Errorf("email message = %q", got["email"])
	}
	if got["password"] != "password is required" {
		t.Errorf("password message = %q", got["password"])
	}

	got = fields(t, val.Struct(SignupForm{Name: "Ana", Email: "ana@example.com", Password: "short", ConfirmPassword: "other"}))
	if got["password"] != "password must be at least 8 characters" {
		t.Errorf("password message = %q", got["password"])
	}
	if got["confirm_password"] != "confirm_password does not match" {
		t.Errorf("confirm message = %q", got["confirm_password"])
	}

	got = fields(t, val.Struct(ChangePasswordForm{Current: "longenough", New: "longenough", Confirm: "longenough"}))
	if _, ok := got["new_password"]; !ok {
		t.Errorf("reusing the current password should fail, got %v", got)
	}

	if err := val.Struct(PinForm{PIN: "1234", Confirm: "1234"}); err != nil {
		t.Errorf("valid pin rejected: %v", err)
	}
	got = fields(t, val.Struct(PinForm{PIN: "12a4", Confirm: "12a4"}))
	if got["pin"] != "pin must be 4 to 8 digits" {
		t.Errorf("pin message = %q", got["pin"])
	}
}
