package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"conceptsearch/internal/config"
	"conceptsearch/internal/eventbus"
	"conceptsearch/internal/resource"
	"conceptsearch/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("conceptsearch", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "Config file (default: user config dir)")
	fs.StringP("base-url", "u", "", "Base URL of the concept service")
	fs.StringP("type", "t", "", "Profile type to start with")
	fs.StringP("log-file", "l", "", "Log file path")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Create event bus
	bus := eventbus.New()
	defer bus.Close()

	configSvc := config.NewConfigServiceWithBus(bus, *configPath)
	if err := configSvc.BindFlags(fs); err != nil {
		return err
	}
	cfg, err := configSvc.Load()
	if err != nil {
		return err
	}

	// Set up logging
	closeLog := setupLogging(cfg)
	defer closeLog()

	if !configSvc.Exists() {
		if err := configSvc.Save(cfg); err != nil {
			slog.Warn("could not create config file", "path", configSvc.Path(), "error", err)
		} else {
			slog.Info("created config file", "path", configSvc.Path())
		}
	}

	client, err := resource.NewClient(cfg.BaseURL, cfg.Client)
	if err != nil {
		return err
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uiModel := ui.NewModel(ctx, cfg, client, bus)
	p := tea.NewProgram(uiModel, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	uiModel.SetProgram(p)

	subscribe(bus, configSvc, p)

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if os.Getenv("CONCEPTSEARCH_E2E_TEST") == "1" {
		fmt.Println("__READY__")
	}

	slog.Info("starting UI", "base_url", cfg.BaseURL, "type", cfg.DefaultType)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	slog.Info("UI exited normally")
	return nil
}

// setupLogging sends slog output to the configured file. Without a usable
// file logs are discarded so they never draw over the UI.
func setupLogging(cfg *config.Config) func() {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.LogFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, opts)))
		return func() {}
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open log file: %v\n", err)
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, opts)))
		return func() {}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, opts)))
	return func() { _ = logFile.Close() }
}

// sender delivers messages to the running program
type sender interface {
	Send(msg tea.Msg)
}

// subscribe wires bus events to logging, config persistence and the UI
func subscribe(bus eventbus.EventBus, configSvc config.ConfigService, p sender) {
	saver := &defaultTypeSaver{configSvc: configSvc}

	bus.Subscribe(eventbus.EventProfileTypeChanged, func(e eventbus.DomainEvent) {
		event, ok := e.(eventbus.ProfileTypeChangedEvent)
		if !ok {
			return
		}
		saved, err := saver.save(event.Seq, event.To)
		if err != nil {
			slog.Error("failed to save default type", "type", event.To, "error", err)
			bus.Publish(eventbus.ErrorEvent{Message: "Could not save default type", Err: err})
			return
		}
		if saved {
			bus.Publish(eventbus.ConfigSavedEvent{Path: configSvc.Path()})
		}
	})

	bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigSavedEvent); ok {
			slog.Info("config saved", "path", event.Path)
		}
		p.Send(ui.EventMsg{Event: e})
	})

	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		p.Send(ui.EventMsg{Event: e})
	})

	bus.Subscribe(eventbus.EventRequestFailed, func(e eventbus.DomainEvent) {
		event, ok := e.(eventbus.RequestFailedEvent)
		if ok && resource.IsStatus(event.Err, http.StatusNotFound) {
			slog.Warn("profile type not found on server", "token", event.Token)
		}
	})
}

// defaultTypeSaver serializes type persistence. Handlers run concurrently, so
// a change older than the last one written is dropped.
type defaultTypeSaver struct {
	mu        sync.Mutex
	configSvc config.ConfigService
	lastSeq   uint64
}

func (s *defaultTypeSaver) save(seq uint64, profileType string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.lastSeq {
		return false, nil
	}
	s.lastSeq = seq
	return persistDefaultType(s.configSvc, profileType)
}

// persistDefaultType stores profileType as the starting type in the config
// file only, so flag and environment overrides are never written back. Types
// the file does not list are not saved.
func persistDefaultType(configSvc config.ConfigService, profileType string) (bool, error) {
	cfg := config.DefaultConfig()
	if configSvc.Exists() {
		fileCfg, err := configSvc.LoadFromPath(configSvc.Path())
		if err != nil {
			return false, err
		}
		cfg = fileCfg
	}
	if cfg.DefaultType == profileType || !slices.Contains(cfg.ProfileTypes, profileType) {
		return false, nil
	}
	cfg.DefaultType = profileType
	if err := configSvc.SaveToPath(cfg, configSvc.Path()); err != nil {
		return false, err
	}
	return true, nil
}
