package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/ai-aide/tabq/server/tabqwire"
)

func main() {
	var (
		addr    = flag.String("addr", "", "listen address (default from config, :4866)")
		cfgPath = flag.String("config", "", "path to yaml config file")
		debug   = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := tabqwire.Run(tabqwire.ServerConfig{Addr: *addr, CfgPath: *cfgPath}); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
