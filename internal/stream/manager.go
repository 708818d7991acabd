package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quotes-cli/internal/logger"
)

// ManagerOptions 配置 Manager。
type ManagerOptions struct {
	Source Source
	URL    string
	// Buffer 为事件通道容量，为 0 时取 64。
	Buffer int
	Logger *logger.LogEntry
	Clock  func() time.Time
	NewID  func() string
}

func (o ManagerOptions) withDefaults() ManagerOptions {
	if o.Source == nil {
		o.Source = SSESource{}
	}
	if o.Buffer <= 0 {
		o.Buffer = 64
	}
	if o.Logger == nil {
		o.Logger = logger.Named("stream")
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Manager 保证任意时刻至多一个活跃订阅，并把传输层事件按序转发到同一个通道。
type Manager struct {
	source Source
	url    string
	log    *logger.LogEntry
	now    func() time.Time
	newID  func() string

	events chan Event
	done   chan struct{}

	mu     sync.Mutex
	active *subscription
	closed bool

	wg        sync.WaitGroup
	closeOnce sync.Once
}

type subscription struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.LogEntry
}

// NewManager 创建一个没有活跃订阅的 Manager。
func NewManager(opts ManagerOptions) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		source: opts.Source,
		url:    opts.URL,
		log:    opts.Logger,
		now:    opts.Clock,
		newID:  opts.NewID,
		events: make(chan Event, opts.Buffer),
		done:   make(chan struct{}),
	}
}

// URL 返回订阅的目标地址。
func (m *Manager) URL() string {
	return m.url
}

// Events 在所有订阅 goroutine 退出后由 Close 关闭。
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Enable 打开订阅；已有活跃订阅时直接返回其 id。不等待服务端响应。
func (m *Manager) Enable(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrManagerClosed
	}
	if m.active != nil {
		return m.active.id, nil
	}
	subCtx, cancel := context.WithCancel(ctx)
	id := m.newID()
	sub := &subscription{
		id:     id,
		ctx:    subCtx,
		cancel: cancel,
		log:    m.log.WithField(logger.SubscriptionKey, id),
	}
	m.active = sub
	m.wg.Add(1)
	go m.run(sub)
	return id, nil
}

// Disable 关闭活跃订阅，没有可关闭的订阅时返回 false。
func (m *Manager) Disable() bool {
	m.mu.Lock()
	sub := m.active
	m.active = nil
	m.mu.Unlock()
	if sub == nil {
		return false
	}
	sub.log.Info("closing connection")
	sub.cancel()
	return true
}

// Active 返回活跃订阅的 id。
func (m *Manager) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return "", false
	}
	return m.active.id, true
}

// Close 关闭订阅、等待订阅 goroutine 退出并关闭事件通道。可重复调用。
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		sub := m.active
		m.active = nil
		m.mu.Unlock()
		if sub != nil {
			sub.log.Info("closing connection")
			sub.cancel()
		}
		close(m.done)
		m.wg.Wait()
		close(m.events)
	})
}

func (m *Manager) run(sub *subscription) {
	defer m.wg.Done()
	defer sub.cancel()

	sub.log.WithField("url", m.url).Info("opening connection")
	err := m.source.Subscribe(sub.ctx, m.url, Handler{
		OnOpen: func() {
			sub.log.Info("connection established")
			m.publish(sub.ctx, Event{Kind: EventOpen, SubscriptionID: sub.id})
		},
		OnMessage: func(data string) {
			m.publish(sub.ctx, Event{Kind: EventMessage, SubscriptionID: sub.id, Data: data})
		},
	})

	if !m.release(sub) {
		// 已被用户或 Close 关闭，无需上报。
		return
	}
	if err == nil {
		err = ErrStreamEnded
	}
	sub.log.WithFields(logger.ErrField(err)).Warn("connection closed because of an error")
	m.publish(context.Background(), Event{Kind: EventClosed, SubscriptionID: sub.id, Err: err})
}

// release 在 sub 仍为活跃订阅时将其清除。
func (m *Manager) release(sub *subscription) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != sub {
		return false
	}
	m.active = nil
	return true
}

func (m *Manager) publish(ctx context.Context, ev Event) {
	ev.Time = m.now()
	select {
	case <-ctx.Done():
		return
	case <-m.done:
		return
	default:
	}
	select {
	case m.events <- ev:
	case <-ctx.Done():
	case <-m.done:
	}
}
