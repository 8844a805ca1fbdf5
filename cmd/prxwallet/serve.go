package main

import (
	"context"

	"prxwallet/internal/adapter/handler"
	"prxwallet/internal/adapter/localauth"
	"prxwallet/internal/application/service"
	"prxwallet/internal/domain/port"
	"prxwallet/internal/infrastructure/server"
)

// serve runs the gateway until ctx is canceled.
func (a *App) serve(ctx context.Context) error {
	pin := func(p string) port.Authenticator {
		return localauth.NewPinAuthenticator(a.session, localauth.StaticPin(p))
	}

	router := handler.NewRouter(handler.Handlers{
		Health: handler.NewHealthHandler(a.journal, a.cache, a.logger),
		Auth:   handler.NewAuthHandler(a.auth, a.logger),
		Wallet: handler.NewWalletHandler(a.trades, a.logger),
		Trade:  handler.NewTradeHandler(a.trades, pin, a.logger),
		Mode:   handler.NewModeHandler(a.modes, a.logger),
	}, a.cache, a.logger)

	a.demo.Start(ctx, a.config.Demo.PriceInterval)

	watcher := service.NewPriceWatcher(a.wallet, a.logger)
	watcher.Start(ctx, a.config.Watcher.Interval)
	defer watcher.Stop()

	srv := server.NewServer(a.config.Server, router, a.logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := shutdownContext(a.config.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
