package tabqwire

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/ai-aide/tabq"
	"github.com/ai-aide/tabq/internal"
)

type ServerConfig struct {
	Addr    string
	CfgPath string
}

// Run serves the frame protocol on cfg.Addr until SIGINT/SIGTERM. One
// engine is shared: queries carry no session state and the resource cache
// benefits every connection.
func Run(sc ServerConfig) error {
	cfg := internal.DefaultConfig()
	if sc.CfgPath != "" {
		loaded, err := internal.LoadConfig(sc.CfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if sc.Addr == "" {
		sc.Addr = cfg.Server.Addr
	}
	engine := tabq.NewEngine(cfg)

	ln, err := net.Listen("tcp", sc.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer func() { _ = ln.Close() }()

	slog.Info("tabq tcp server listening", "addr", sc.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			slog.Warn("accept failed", "err", err)
			continue
		}
		go handleConn(ctx, conn, engine)
	}
}

func handleConn(ctx context.Context, conn net.Conn, engine *tabq.Engine) {
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(time.Time{})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var req QueryRequest
		if err := ReadFrame(conn, &req); err != nil {
			// client closed or bad frame
			return
		}

		res, err := engine.Exec(ctx, req.SQL, req.Format)
		if err != nil {
			_ = WriteFrame(conn, QueryResponse{ID: req.ID, Error: err.Error()})
			continue
		}
		_ = WriteFrame(conn, NewQueryResponse(req.ID, res))
	}
}
