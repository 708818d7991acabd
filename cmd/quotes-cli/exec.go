package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quotes-cli/internal/feed"
	"quotes-cli/internal/stream"
)

// jsonEvent 是 exec --json 每行输出的结构。
type jsonEvent struct {
	Type           string      `json:"type"`
	SubscriptionID string      `json:"subscription_id"`
	Index          int         `json:"index,omitempty"`
	Data           string      `json:"data,omitempty"`
	Time           time.Time   `json:"time"`
	Error          *eventError `json:"error,omitempty"`
}

type eventError struct {
	Message string `json:"message"`
}

// tailStream 是 exec 需要的最小订阅能力，stream.Manager 满足它。
type tailStream interface {
	Enable(ctx context.Context) (string, error)
	Disable() bool
	Events() <-chan stream.Event
}

type tailOptions struct {
	Count int
	JSON  bool
}

func execMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	var cfgPath string
	var baseURL string
	var overrides stringSlice
	var count int
	var asJSON bool
	var timeout time.Duration
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.quotes/config.toml)")
	fs.StringVar(&baseURL, "base-url", "", "Quotes backend base URL")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	fs.IntVar(&count, "count", 0, "Stop after N quotes (0 = until interrupted or closed)")
	fs.BoolVar(&asJSON, "json", false, "Emit one JSON event per line")
	fs.DurationVar(&timeout, "timeout", 0, "Stop after this long (e.g. 30s; 0 = no limit)")
	if err := fs.Parse(args); err != nil {
		fatalf("parse exec args: %v", err)
	}

	cfg, err := loadConfig(cfgPath, baseURL, prependOverrides(root.overrides, []string(overrides)))
	if err != nil {
		fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	manager := stream.NewManager(stream.ManagerOptions{URL: cfg.StreamURL()})
	err = tail(ctx, manager, os.Stdout, tailOptions{Count: count, JSON: asJSON})
	manager.Close()
	if err != nil {
		fatalf("exec: %v", err)
	}
}

// tail 订阅流并逐条输出，直到收到 Count 条、ctx 结束或传输层关闭。
// 传输层关闭返回错误，其余情况返回 nil。
func tail(ctx context.Context, s tailStream, out io.Writer, opts tailOptions) error {
	// 订阅不挂在 ctx 下：ctx 结束时走 Disable，保证不会再出现 Closed 事件。
	id, err := s.Enable(context.Background())
	if err != nil {
		return err
	}
	defer s.Disable()

	list := feed.New()
	list.Connect(id)
	enc := json.NewEncoder(out)

	for {
		select {
		case <-ctx.Done():
			log.WithField("received", list.Len()).Info("exec stopped")
			return nil
		case ev, ok := <-s.Events():
			if !ok {
				return stream.ErrManagerClosed
			}
			if !list.Owns(ev.SubscriptionID) {
				continue
			}
			switch ev.Kind {
			case stream.EventOpen:
				if opts.JSON {
					if err := enc.Encode(jsonEvent{Type: "open", SubscriptionID: id, Time: ev.Time}); err != nil {
						return err
					}
				}
			case stream.EventMessage:
				if !list.Append(ev.SubscriptionID, ev.Data) {
					continue
				}
				if opts.JSON {
					err = enc.Encode(jsonEvent{Type: "message", SubscriptionID: id, Index: list.Len(), Data: ev.Data, Time: ev.Time})
				} else {
					_, err = fmt.Fprintln(out, ev.Data)
				}
				if err != nil {
					return err
				}
				if opts.Count > 0 && list.Len() >= opts.Count {
					return nil
				}
			case stream.EventClosed:
				list.Disconnect()
				cause := ev.Err
				if cause == nil {
					cause = stream.ErrStreamEnded
				}
				if opts.JSON {
					_ = enc.Encode(jsonEvent{
						Type:           "closed",
						SubscriptionID: id,
						Time:           ev.Time,
						Error:          &eventError{Message: cause.Error()},
					})
				}
				if errors.Is(cause, stream.ErrStreamEnded) {
					return cause
				}
				return fmt.Errorf("connection closed: %w", cause)
			}
		}
	}
}
