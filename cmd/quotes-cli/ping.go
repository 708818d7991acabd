package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"quotes-cli/internal/stream"
)

func pingMain(root rootArgs, args []string) {
	if err := runPing(root, args, os.Stdout); err != nil {
		fatalf("ping failed: %v", err)
	}
}

// runPing 先做 TCP 可达性检查，再请求 /health。
func runPing(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var cfgPath string
	var baseURL string
	var overrides stringSlice
	var timeoutSeconds int
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.quotes/config.toml)")
	fs.StringVar(&baseURL, "base-url", "", "Override base URL (e.g. http://127.0.0.1:3000)")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	fs.IntVar(&timeoutSeconds, "timeout", 10, "Timeout seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(cfgPath, baseURL, prependOverrides(root.overrides, []string(overrides)))
	if err != nil {
		return err
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	if err := stream.CheckReachable(ctx, cfg.BaseURL); err != nil {
		return err
	}
	status, err := stream.CheckHealth(ctx, nil, cfg.BaseURL)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "ok: %s\n", status)
	return nil
}
