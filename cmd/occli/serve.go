package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jrsteele09/go-ordercloud/internal/fakeapi"
	"github.com/jrsteele09/go-ordercloud/internal/utils"
	"github.com/jrsteele09/go-ordercloud/models"
	"github.com/pkg/errors"
)

func serve(args []string) error {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := flags.String("addr", ":8080", "listen address")
	clientID := flags.String("client-id", "", "accept only this client id")
	clientSecret := flags.String("client-secret", "", "enable client_credentials with this secret")
	user := flags.String("user", "buyer01:Password1!", "username:password accepted by the password grant")
	tokenTTL := flags.Duration("token-ttl", 10*time.Hour, "access token lifetime")
	if err := flags.Parse(args); err != nil {
		return err
	}
	username, password, ok := strings.Cut(*user, ":")
	if !ok {
		return errors.New("-user must be username:password")
	}

	logger := newLogger(true)
	api, err := fakeapi.New(
		fakeapi.WithClientID(*clientID),
		fakeapi.WithClientSecret(*clientSecret),
		fakeapi.WithUser(username, password),
		fakeapi.WithTokenTTL(*tokenTTL),
		fakeapi.WithLogger(logger),
		fakeapi.WithProducts(demoProducts()...),
	)
	if err != nil {
		return err
	}

	displayAppname("occli serve")
	server := &http.Server{Addr: *addr, Handler: api, ReadHeaderTimeout: 10 * time.Second}
	logger.Info().Str("addr", *addr).Str("user", username).Msg("fake OrderCloud API listening")
	if err := serveUntilStopped(server, stopSignal()); err != nil {
		logger.Error().Err(err).Msg("fake api stopped")
		return err
	}
	return nil
}

// serveUntilStopped runs server until stop fires or the listener fails.
func serveUntilStopped(server *http.Server, stop <-chan os.Signal) error {
	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(server)
	}()
	select {
	case err := <-errs:
		return err
	case <-stop:
		return shutdown(server)
	}
}

func listenAndServe(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func stopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func demoProducts() []models.Product {
	return []models.Product{
		{ID: "tee-red", Name: "Red T-Shirt", Active: utils.Ptr(true), XP: map[string]any{"Color": "red"},
			Inventory: &models.Inventory{Enabled: utils.Ptr(true), QuantityAvailable: utils.Ptr(1250)}},
		{ID: "tee-blue", Name: "Blue T-Shirt", Active: utils.Ptr(true), XP: map[string]any{"Color": "blue"},
			Inventory: &models.Inventory{Enabled: utils.Ptr(true), QuantityAvailable: utils.Ptr(86)}},
		{ID: "cap-red", Name: "Red Cap", Active: utils.Ptr(false), XP: map[string]any{"Color": "red"}},
	}
}
