package cmd

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"
)

func setupLogging(ctx *cli.Context) {
	level := slog.LevelInfo
	if ctx.GlobalBool("q") {
		level = slog.LevelWarn
	}
	if ctx.GlobalBool("v") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
