// Package feed 保存引言流的界面状态：只追加的消息列表，以及绑定至多一个订阅的连接标志。
package feed

// State 为连接标志。
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Feed 只由 UI 循环所在的 goroutine 使用，不加锁。
type Feed struct {
	messages       []string
	state          State
	subscriptionID string
}

// New 返回未连接的空列表。
func New() *Feed {
	return &Feed{}
}

// Connect 将连接标志绑定到订阅 id。已连接时再次调用会重新绑定，调用方应先 Disconnect。
func (f *Feed) Connect(id string) {
	f.state = Connected
	f.subscriptionID = id
}

// Disconnect 关闭连接标志，返回之前是否处于连接状态。
func (f *Feed) Disconnect() bool {
	was := f.state == Connected
	f.state = Disconnected
	f.subscriptionID = ""
	return was
}

// Owns 判断 id 是否为当前绑定的订阅。
func (f *Feed) Owns(id string) bool {
	return f.state == Connected && id != "" && id == f.subscriptionID
}

// Append 仅追加来自当前绑定订阅的消息，已关闭或其他订阅的消息直接丢弃。
func (f *Feed) Append(id, payload string) bool {
	if !f.Owns(id) {
		return false
	}
	f.messages = append(f.messages, payload)
	return true
}

func (f *Feed) State() State {
	return f.state
}

func (f *Feed) Connected() bool {
	return f.state == Connected
}

func (f *Feed) SubscriptionID() string {
	return f.subscriptionID
}

func (f *Feed) Len() int {
	return len(f.messages)
}

// Messages 按到达顺序返回列表副本。
func (f *Feed) Messages() []string {
	return append([]string(nil), f.messages...)
}

// Latest 返回最新一条消息。
func (f *Feed) Latest() (string, bool) {
	if len(f.messages) == 0 {
		return "", false
	}
	return f.messages[len(f.messages)-1], true
}
