/*
Package main is the entry point for the coachchat terminal client.

It loads configuration, initializes the global logging system, builds the
session, REST client, and chat core, opens the selected conversation, and
bridges stdin lines to the delivery coordinator until interrupted.
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"coachchat/internal/app/chat"
	"coachchat/internal/app/rest"
	"coachchat/internal/app/session"
	"coachchat/internal/configs"
	"coachchat/internal/pkg/errs"
	"coachchat/internal/pkg/logx"
)

func main() {
	// Optional .env for local development; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("api_base_url", cfg.APIBaseURL).
		Str("ws_base_url", cfg.WSBaseURL).
		Msg("Configuration loaded successfully")

	sess, err := session.FromToken(cfg.AuthToken)
	if err != nil {
		logx.Fatal(err, "Failed to establish session from AUTH_TOKEN")
	}

	client := rest.NewClient(cfg.APIBaseURL, sess, cfg.RequestTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	synchronizer := chat.NewSynchronizer(client, sess)
	if err := synchronizer.Refresh(ctx); err != nil {
		logx.Fatal(err, "Failed to load conversation list")
	}

	rooms := synchronizer.Rooms()
	if len(rooms) == 0 {
		logx.Info("No conversations available for this account.")
		return
	}

	for _, room := range rooms {
		fmt.Printf("  [%s] %s (unread: %d)\n", room.ID, room.CounterpartName, room.UnreadCount)
	}

	roomID := rooms[0].ID
	if len(os.Args) > 1 {
		roomID = os.Args[1]
	}

	// mark-read gates navigation: a failed read-state write aborts entering the room
	if err := synchronizer.Enter(ctx, roomID); err != nil {
		logx.Fatal(err, "Could not enter conversation")
	}
	if err := synchronizer.Refresh(ctx); err != nil {
		logx.Warn("Room list refresh after entering failed", "room_id", roomID)
	}

	store := chat.NewStore()
	coordinator := chat.NewCoordinator(roomID, store, client, sess)
	transport := chat.NewTransport(cfg.WSBaseURL, sess)

	transport.OnMessage(func(msg chat.Message) {
		store.AppendIncoming(msg)
		if !msg.IsOwn {
			fmt.Printf("<%s> %s\n", msg.SenderKind, msg.Body)
		}
	})

	transport.OnStateChange(func(state chat.ConnState) {
		switch state {
		case chat.ConnOpen:
			fmt.Println("-- connected --")
		case chat.ConnErroring, chat.ConnConnecting:
			fmt.Println("-- connecting… --")
		case chat.ConnClosed:
			fmt.Println("-- disconnected --")
		}
	})

	if err := transport.Open(ctx, roomID); err != nil {
		// transport errors are absorbed into reconnection; anything else is fatal
		if errs.KindOf(err) != errs.KindTransport {
			logx.Fatal(err, "Could not open live connection")
		}
	}

	if err := coordinator.Refresh(ctx); err != nil {
		logx.Fatal(err, "Failed to load message history")
	}

	for _, msg := range store.Messages() {
		fmt.Printf("<%s> %s\n", msg.SenderKind, msg.Body)
	}

	go readAndSend(ctx, coordinator)

	<-ctx.Done()

	transport.Close("client shutdown")
	transport.Wait()
	coordinator.Wait()

	logx.Info("Client stopped.")
}

// readAndSend bridges stdin lines to the delivery coordinator.
func readAndSend(ctx context.Context, coordinator *chat.Coordinator) {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		if err := coordinator.Send(ctx, scanner.Text(), nil); err != nil {
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
		}
	}
}
