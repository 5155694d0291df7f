// Command blackjackd hosts one blackjack table over WebSockets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blackjack/internal/app"
	"blackjack/internal/config"
	"blackjack/internal/gateway"
	"blackjack/internal/logging"
	"blackjack/internal/ports/ws"
	"blackjack/internal/render"

	"github.com/heroiclabs/nakama-common/runtime"
)

func main() {
	configPath := flag.String("config", "", "path to a table config JSON file")
	addr := flag.String("addr", "", "listen address, overrides listen_addr")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	issueTicket := flag.String("issue-ticket", "", "print a seat ticket for this subject and exit")
	flag.Parse()

	logger, zl, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = zl.Sync() }()

	table, err := loadTable(*configPath)
	if err != nil {
		logger.Error("Config: %v", err)
		os.Exit(1)
	}
	if *addr != "" {
		table.ListenAddr = *addr
	}

	var tickets *ws.TicketService
	if table.TicketSecret != "" {
		tickets, err = ws.NewTicketService(table.TicketSecret, ws.DefaultTicketTTL)
		if err != nil {
			logger.Error("Tickets: %v", err)
			os.Exit(1)
		}
	}
	if *issueTicket != "" {
		if tickets == nil {
			logger.Error("Tickets: ticket_secret is not configured")
			os.Exit(1)
		}
		ticket, err := tickets.Issue(*issueTicket)
		if err != nil {
			logger.Error("Tickets: %v", err)
			os.Exit(1)
		}
		fmt.Println(ticket)
		return
	}

	if err := run(logger, table, tickets); err != nil {
		logger.Error("Server: %v", err)
		os.Exit(1)
	}
}

func loadTable(path string) (config.Table, error) {
	if path != "" {
		if err := config.LoadTable(path); err != nil {
			return config.Table{}, err
		}
	}
	return config.ApplyEnv(config.Get(), config.Environ(os.Environ()))
}

func run(logger runtime.Logger, table config.Table, tickets *ws.TicketService) error {
	opts := app.Options{
		MaxPlayers:   table.MaxPlayers,
		House:        table.HouseEnabled,
		HouseStandOn: table.HouseStandOn,
	}
	if table.Seed != 0 {
		opts.Rand = rand.New(rand.NewSource(table.Seed))
	}
	if table.TableView {
		opts.Views = render.NewConsole(os.Stdout).Views()
	}
	session, err := app.NewSession(opts)
	if err != nil {
		return err
	}

	tableLogger := logger.WithField("table_id", session.ID().String())
	gw := gateway.New(session, tableLogger)
	srv := &http.Server{
		Addr: table.ListenAddr,
		Handler: ws.NewServer(gw, tableLogger, ws.Options{
			SendBuffer: table.SendBuffer,
			Tickets:    tickets,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		tableLogger.Info("Server: listening on %s (max players %d, house %t)", table.ListenAddr, table.MaxPlayers, table.HouseEnabled)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	tableLogger.Info("Server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
