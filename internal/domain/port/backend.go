package port

import (
	"context"

	"prxwallet/internal/domain/model"
)

// BackendPort is the wallet backend: auth, reads and the single
// parameterized trade mutation.
type BackendPort interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error)
	Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResult, error)
	Me(ctx context.Context) (*model.User, error)
	ChangePassword(ctx context.Context, req model.PasswordChange) error
	WalletInfo(ctx context.Context) (*model.WalletInfo, error)
	Price(ctx context.Context) (*model.Price, error)
	History(ctx context.Context, userID string) ([]model.Transaction, error)
	Submit(ctx context.Context, req model.SubmitRequest) (*model.Receipt, error)
}
