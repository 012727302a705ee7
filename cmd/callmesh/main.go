// Command callmesh serves the Twilio voice webhooks backed by a chat
// completion provider.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hupe1980/callmesh/config"
	"github.com/hupe1980/callmesh/conversation"
	"github.com/hupe1980/callmesh/logging"
	"github.com/hupe1980/callmesh/model"
	"github.com/hupe1980/callmesh/model/anthropic"
	"github.com/hupe1980/callmesh/model/openai"
	"github.com/hupe1980/callmesh/session"
	"github.com/hupe1980/callmesh/webhook"
)

const shutdownGracePeriod = 10 * time.Second

func newCompleter(cfg config.Config) (model.Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.HFAPIKey
			o.BaseURL = cfg.HFAPIURL
			o.Model = cfg.HFModel
			o.MaxTokens = cfg.MaxTokens
			o.Temperature = cfg.Temperature
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			o.Model = cfg.AnthropicModel
			o.MaxTokens = cfg.MaxTokens
			o.Temperature = cfg.Temperature
		}), nil
	case config.ProviderMock:
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

func buildServer(cfg config.Config, logger *logging.CallLogger) (*webhook.Server, error) {
	completer, err := newCompleter(cfg)
	if err != nil {
		return nil, err
	}

	store := session.NewInMemoryStore()
	handler := conversation.NewHandler(store, completer, func(o *conversation.Options) {
		o.MaxHistory = cfg.MaxHistoryMessages
		o.Logger = logger.WithComponent("conversation")
	})

	return webhook.New(handler, store, func(o *webhook.Options) {
		o.Voice = cfg.Voice
		o.Language = cfg.SpeechLanguage
		o.Logger = logger.WithComponent("webhook")
	}), nil
}

func run(ctx context.Context, cfg config.Config, logger *logging.CallLogger) error {
	srv, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting server", "addr", cfg.Addr(), "provider", string(cfg.Provider), "model", cfg.Model())

	listenErrCh := make(chan error, 1)
	go func() {
		listenErrCh <- srv.Start(cfg.Addr())
	}()

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer) int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(stderr, "callmesh: %v\n", err)
		return 1
	}

	logger := logging.NewSlogLogger(cfg.LogLevel, cfg.LogFormat, false)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "callmesh: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr))
}
