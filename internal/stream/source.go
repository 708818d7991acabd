package stream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/r3labs/sse/v2"
	backoff "gopkg.in/cenkalti/backoff.v1"
)

// Handler 接收订阅回调，回调在订阅 goroutine 上逐个执行。
type Handler struct {
	OnOpen    func()
	OnMessage func(data string)
}

// Source 打开一个推送流订阅。Subscribe 阻塞直到 ctx 取消或传输层关闭。
type Source interface {
	Subscribe(ctx context.Context, url string, h Handler) error
}

// DefaultMaxEventSize 是单个事件的默认读取上限。r3labs 默认只有 64 KiB。
const DefaultMaxEventSize = 32 << 20

// SSESource 使用 r3labs 客户端消费 text/event-stream 响应，从不重连：
// 第一次传输失败即结束 Subscribe。
type SSESource struct {
	HTTPClient *http.Client
	Headers    map[string]string
	// MaxEventSize 为单个事件的字节上限，为 0 时取 DefaultMaxEventSize。
	MaxEventSize int
}

func (s SSESource) Subscribe(ctx context.Context, url string, h Handler) error {
	maxSize := s.MaxEventSize
	if maxSize <= 0 {
		maxSize = DefaultMaxEventSize
	}
	client := sse.NewClient(url, sse.ClientMaxBufferSize(maxSize))
	client.ReconnectStrategy = &backoff.StopBackOff{}
	if s.HTTPClient != nil {
		client.Connection = s.HTTPClient
	}
	for k, v := range s.Headers {
		client.Headers[k] = v
	}
	client.ResponseValidator = func(_ *sse.Client, resp *http.Response) error {
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("could not connect to stream: %s", resp.Status)
		}
		if h.OnOpen != nil {
			h.OnOpen()
		}
		return nil
	}
	return client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		if msg == nil || h.OnMessage == nil || len(msg.Data) == 0 {
			return
		}
		// 与浏览器 onmessage 一致，只处理未命名事件。
		if name := string(msg.Event); name != "" && name != "message" {
			return
		}
		h.OnMessage(string(msg.Data))
	})
}
