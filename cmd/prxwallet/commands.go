package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"prxwallet/internal/adapter/localauth"
	"prxwallet/internal/application/validation"
	"prxwallet/internal/domain/model"
)

func (a *App) run(ctx context.Context, cmd string, args []string) error {
	if err := a.pinAuth.Unlock(ctx); err != nil {
		return err
	}

	switch cmd {
	case "serve":
		return a.serve(ctx)
	case "signup":
		return a.signup(ctx)
	case "login":
		return a.login(ctx)
	case "logout":
		return a.auth.Logout(ctx)
	case "me":
		return a.me(ctx)
	case "passwd":
		return a.passwd(ctx)
	case "balance":
		return a.balance(ctx)
	case "price":
		return a.price(ctx)
	case "quote":
		return a.quote(ctx, args)
	case "history":
		return a.history(ctx)
	case "transfer":
		return a.trade(ctx, model.FlowTransfer, args)
	case "exchange":
		return a.trade(ctx, model.FlowExchange, args)
	case "card":
		return a.trade(ctx, model.FlowCard, args)
	case "receipts":
		return a.receipts(ctx, args)
	case "pin":
		return a.pin(ctx, args)
	case "lock":
		return a.lock(ctx, args)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) signup(ctx context.Context) error {
	p := stdin
	var form validation.SignupForm
	var err error
	if form.Name, err = p.line("Name: "); err != nil {
		return err
	}
	if form.Email, err = p.line("Email: "); err != nil {
		return err
	}
	if form.Password, err = p.secret("Password: "); err != nil {
		return err
	}
	if form.ConfirmPassword, err = p.secret("Confirm password: "); err != nil {
		return err
	}

	u, err := a.auth.Signup(ctx, form)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s. Your wallet: %s\n", u.Name, u.WalletAddress)
	return nil
}

func (a *App) login(ctx context.Context) error {
	p := stdin
	var form validation.LoginForm
	var err error
	if form.Email, err = p.line("Email: "); err != nil {
		return err
	}
	if form.Password, err = p.secret("Password: "); err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, form)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", u.Email)
	return nil
}

func (a *App) me(ctx context.Context) error {
	u, err := a.auth.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\nwallet: %s\n", u.Name, u.Email, u.WalletAddress)
	return nil
}

func (a *App) passwd(ctx context.Context) error {
	p := stdin
	var form validation.ChangePasswordForm
	var err error
	if form.Current, err = p.secret("Current password: "); err != nil {
		return err
	}
	if form.New, err = p.secret("New password: "); err != nil {
		return err
	}
	if form.Confirm, err = p.secret("Confirm new password: "); err != nil {
		return err
	}
	if err := a.auth.ChangePassword(ctx, form); err != nil {
		return err
	}
	fmt.Println("Password changed")
	return nil
}

func (a *App) balance(ctx context.Context) error {
	info, err := a.trades.WalletInfo(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("wallet: %s\nPRX:    %s\nUSDT:   %s\n", info.Address, info.PRXBalance, info.USDTBalance)
	return nil
}

func (a *App) price(ctx context.Context) error {
	p, err := a.trades.Price(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("1 PRX = %s USDT\n", p.Value)
	return nil
}

func (a *App) quote(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: quote <amount> <PRX|USDT>")
	}
	cur, ok := model.ParseCurrency(args[1])
	if !ok {
		return fmt.Errorf("unknown currency %q", args[1])
	}
	eq, err := a.trades.Quote(ctx, args[0], cur)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s = %s %s\n", args[0], cur, eq, cur.Counter())
	return nil
}

func (a *App) history(ctx context.Context) error {
	txs, err := a.trades.History(ctx)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Println("No transactions yet")
		return nil
	}
	for _, tx := range txs {
		fmt.Printf("%s  %-8s  %s -> %s\n", tx.Date.Local().Format("2006-01-02 15:04"), tx.Operation, tx.Amount, tx.ReceivedAmount)
	}
	return nil
}

func (a *App) trade(ctx context.Context, f model.Flow, args []string) error {
	want := 2
	if f.NeedsReceiver() {
		want = 3
	}
	if len(args) != want {
		if f.NeedsReceiver() {
			return fmt.Errorf("usage: %s <amount> <PRX|USDT> <receiver>", f)
		}
		return fmt.Errorf("usage: %s <amount> <PRX|USDT>", f)
	}

	form := &model.TransferData{
		Amount:        args[0],
		InputCurrency: model.Currency(strings.ToUpper(args[1])),
	}
	if f.NeedsReceiver() {
		form.ReceiverAddress = args[2]
	}

	rec, err := a.trades.Submit(ctx, f, form)
	if err != nil {
		return err
	}
	fmt.Printf("Done. %s %s via %s (tx %s)\n", rec.Amount, rec.Currency, rec.Route, rec.TxID)
	return nil
}

func (a *App) receipts(ctx context.Context, args []string) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("limit must be a positive integer")
		}
		limit = n
	}
	list, err := a.trades.Receipts(ctx, limit)
	if err != nil {
		return err
	}
	for _, r := range list {
		line := fmt.Sprintf("%s  %-7s  %s %s  %s", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Amount, r.Currency, r.Route)
		if r.Error != "" {
			line += "  " + r.Error
		}
		fmt.Println(line)
	}
	return nil
}

func (a *App) pin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pin set|off")
	}
	switch args[0] {
	case "set":
		p := stdin
		var form validation.PinForm
		var err error
		if form.PIN, err = p.secret("New PIN: "); err != nil {
			return err
		}
		if form.Confirm, err = p.secret("Confirm PIN: "); err != nil {
			return err
		}
		if err := a.validator.Struct(form); err != nil {
			return err
		}
		if err := localauth.Enroll(ctx, a.session, form.PIN); err != nil {
			return err
		}
		fmt.Println("PIN enabled")
	case "off":
		if err := localauth.Disable(ctx, a.session); err != nil {
			return err
		}
		fmt.Println("PIN disabled")
	default:
		return fmt.Errorf("usage: pin set|off")
	}
	return nil
}

func (a *App) lock(ctx context.Context, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return fmt.Errorf("usage: lock on|off")
	}
	on := args[0] == "on"
	if err := localauth.SetAppLock(ctx, a.session, on); err != nil {
		if errors.Is(err, localauth.ErrNoPin) {
			return fmt.Errorf("set a PIN first with: pin set")
		}
		return err
	}
	if on {
		fmt.Println("App lock enabled")
	} else {
		fmt.Println("App lock disabled")
	}
	return nil
}
