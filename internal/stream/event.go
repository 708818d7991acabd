package stream

import (
	"errors"
	"time"
)

// ErrStreamEnded 表示服务端结束了响应体。没有重连策略，因此与其他传输错误一样是终态。
var ErrStreamEnded = errors.New("stream ended by server")

// ErrManagerClosed 在 Close 之后调用 Enable 时返回。
var ErrManagerClosed = errors.New("stream manager closed")

// EventKind 枚举订阅向界面上报的事件类型。
type EventKind int

const (
	// EventOpen 服务端已接受订阅。
	EventOpen EventKind = iota
	// EventMessage 携带一条消息。
	EventMessage
	// EventClosed 是终态，Err 为传输层错误。
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event 按传输层产生的顺序投递到 Manager.Events。
type Event struct {
	Kind           EventKind
	SubscriptionID string
	Data           string
	Err            error
	Time           time.Time
}
