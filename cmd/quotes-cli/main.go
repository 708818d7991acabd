package main

import (
	"fmt"
	"os"
	"strings"

	"quotes-cli/internal/config"
	"quotes-cli/internal/features"
	"quotes-cli/internal/logger"
	"quotes-cli/internal/stream"
	"quotes-cli/internal/tui"
)

var log = logger.Named("cli")

func main() {
	logger.Configure()
	if logFile, _, err := logger.SetupFile(logger.DefaultLogPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize log file: %v\n", err)
	} else {
		defer logFile.Close()
	}

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "exec":
			execMain(root, rest[1:])
			return
		case "ping":
			pingMain(root, rest[1:])
			return
		case "config":
			configMain(root, rest[1:])
			return
		case "features":
			featuresMain(root, rest[1:])
			return
		case "completion":
			completionMain(rest[1:])
			return
		}
	}

	runInteractive(root, rest)
}

func runInteractive(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("quotes-cli")
	if err := fs.Parse(args); err != nil {
		fatalf("parse args: %v", err)
	}
	if fs.NArg() > 0 {
		fatalf("unknown command %q (run quotes-cli -h for usage)", fs.Arg(0))
	}

	overrides := prependOverrides(root.overrides, []string(cli.configOverrides))
	if cli.autostart {
		overrides = append(overrides, fmt.Sprintf("features.%s=true", features.Autostart))
	}
	cfg, err := loadConfig(cli.cfgPath, cli.baseURL, overrides)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}

	manager := stream.NewManager(stream.ManagerOptions{URL: cfg.StreamURL()})
	defer manager.Close()

	result, err := tui.Run(tui.Options{
		Stream:         manager,
		Title:          cfg.Title,
		Features:       features.Set(cfg.Features),
		CopyableOutput: cli.copyableOutput,
	})
	if err != nil {
		manager.Close()
		fatalf("program exit: %v", err)
	}
	printExitSummary(len(result.Messages))
}

// loadConfig 按 defaults → 文件 → .env → 环境变量 → -c 覆盖 → --base-url 的顺序解析配置。
func loadConfig(cfgPath, baseURL string, overrides []string) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	cfg = config.ApplyKVOverrides(cfg, overrides)
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg = config.ApplyKVOverrides(cfg, []string{"base_url=" + v})
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warnf("ignoring log level: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func printExitSummary(received int) {
	if received == 0 {
		return
	}
	noun := "quotes"
	if received == 1 {
		noun = "quote"
	}
	fmt.Printf("Received %d %s this session.\n", received, noun)
}

// fatalf 终端与日志文件各写一份；日志文件在 TUI 场景之外用户看不到。
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	logger.Fatalf(format, args...)
}
