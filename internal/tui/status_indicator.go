package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// StatusIndicatorState 枚举了连接状态行可显示的所有状态。
type StatusIndicatorState int

const (
	// StatusDisconnected 表示未连接，计时器暂停。
	StatusDisconnected StatusIndicatorState = iota
	// StatusConnecting 表示已发起订阅、尚未收到服务端响应，计时器累加。
	StatusConnecting
	// StatusConnected 表示订阅已建立，计时器累加。
	StatusConnected
	// StatusError 表示传输层关闭了订阅。
	StatusError
)

func (s StatusIndicatorState) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

func (s StatusIndicatorState) defaultHeader() string {
	switch s {
	case StatusConnecting:
		return "Connecting"
	case StatusConnected:
		return "Connected"
	case StatusError:
		return "Connection closed"
	default:
		return "Disconnected"
	}
}

func (s StatusIndicatorState) tracksElapsed() bool {
	return s == StatusConnecting || s == StatusConnected
}

func (s StatusIndicatorState) valid() bool {
	switch s {
	case StatusDisconnected, StatusConnecting, StatusConnected, StatusError:
		return true
	default:
		return false
	}
}

// StatusIndicatorOptions 控制指示器的初始化行为。
type StatusIndicatorOptions struct {
	State StatusIndicatorState
	Clock func() time.Time
}

// StatusIndicatorWidget 渲染连接状态行：图标 + 标题 + 详情 + 连接时长。
type StatusIndicatorWidget struct {
	state  StatusIndicatorState
	header string
	detail string

	elapsedRunning time.Duration
	lastResumeAt   time.Time
	paused         bool

	clock func() time.Time
}

// NewStatusIndicatorWidget 构造状态指示器，默认处于 Disconnected。
func NewStatusIndicatorWidget(opts StatusIndicatorOptions) *StatusIndicatorWidget {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	state := opts.State
	if !state.valid() {
		state = StatusDisconnected
	}
	w := &StatusIndicatorWidget{
		state:        state,
		header:       state.defaultHeader(),
		clock:        clock,
		lastResumeAt: clock(),
	}
	if !state.tracksElapsed() {
		w.paused = true
	}
	return w
}

// State 返回当前状态。
func (w *StatusIndicatorWidget) State() StatusIndicatorState {
	if w == nil {
		return StatusDisconnected
	}
	return w.state
}

// SetState 更新状态与详情文本。从非计时状态进入 Connecting 时计时清零。
func (w *StatusIndicatorWidget) SetState(state StatusIndicatorState, detail string) {
	if w == nil || !state.valid() {
		return
	}
	now := w.now()
	if state == StatusConnecting && !w.state.tracksElapsed() {
		w.elapsedRunning = 0
		w.lastResumeAt = now
		w.paused = false
	}
	w.syncTimerForState(now, state)
	w.state = state
	w.header = state.defaultHeader()
	w.detail = strings.TrimSpace(detail)
}

// ElapsedSeconds 返回本次连接累计秒数。
func (w *StatusIndicatorWidget) ElapsedSeconds() uint64 {
	if w == nil {
		return 0
	}
	return w.elapsedSecondsAt(w.now())
}

type segment struct {
	text  string
	style lipgloss.Style
}

func (w *StatusIndicatorWidget) segments(frame string) []segment {
	icon, iconStyle := w.icon(frame)
	out := []segment{{text: icon, style: iconStyle}}
	out = append(out, segment{text: " "}, segment{text: w.header, style: lipgloss.NewStyle().Bold(true)})
	if w.detail != "" {
		out = append(out, segment{text: ": "}, segment{text: w.detail})
	}
	if w.state.tracksElapsed() {
		out = append(out, segment{text: " "}, segment{
			text:  fmt.Sprintf("(%s)", fmtElapsedCompact(w.elapsedSecondsAt(w.now()))),
			style: lipgloss.NewStyle().Faint(true),
		})
	}
	return out
}

// Plain 返回不带样式、按宽度截断的状态行文本。
func (w *StatusIndicatorWidget) Plain(width int, frame string) string {
	if w == nil {
		return ""
	}
	var b strings.Builder
	for _, sg := range clampSegments(w.segments(frame), width) {
		b.WriteString(sg.text)
	}
	return b.String()
}

// Render 绘制状态行，宽度不足时截断。
func (w *StatusIndicatorWidget) Render(width int, frame string) string {
	if w == nil {
		return ""
	}
	var b strings.Builder
	for _, sg := range clampSegments(w.segments(frame), width) {
		b.WriteString(sg.style.Render(sg.text))
	}
	return b.String()
}

func (w *StatusIndicatorWidget) icon(frame string) (string, lipgloss.Style) {
	switch w.state {
	case StatusConnecting:
		if frame == "" {
			frame = "•"
		}
		return frame, lipgloss.NewStyle().Foreground(colorAccent)
	case StatusConnected:
		return "●", lipgloss.NewStyle().Foreground(colorStart)
	case StatusError:
		return "!", lipgloss.NewStyle().Foreground(colorStop)
	default:
		return "○", lipgloss.NewStyle().Foreground(colorMuted)
	}
}

func (w *StatusIndicatorWidget) now() time.Time {
	if w.clock != nil {
		return w.clock()
	}
	return time.Now()
}

func (w *StatusIndicatorWidget) syncTimerForState(now time.Time, next StatusIndicatorState) {
	if next.tracksElapsed() && w.paused {
		w.resumeTimerAt(now)
		return
	}
	if !next.tracksElapsed() && !w.paused {
		w.pauseTimerAt(now)
	}
}

func (w *StatusIndicatorWidget) pauseTimerAt(now time.Time) {
	if w.paused {
		return
	}
	w.elapsedRunning += now.Sub(w.lastResumeAt)
	w.paused = true
}

func (w *StatusIndicatorWidget) resumeTimerAt(now time.Time) {
	if !w.paused {
		return
	}
	w.lastResumeAt = now
	w.paused = false
}

func (w *StatusIndicatorWidget) elapsedDurationAt(now time.Time) time.Duration {
	if w.paused {
		return w.elapsedRunning
	}
	return w.elapsedRunning + now.Sub(w.lastResumeAt)
}

func (w *StatusIndicatorWidget) elapsedSecondsAt(now time.Time) uint64 {
	return uint64(w.elapsedDurationAt(now).Seconds())
}

// fmtElapsedCompact 将秒数格式化为友好字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		minutes := elapsedSecs / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	default:
		hours := elapsedSecs / 3600
		minutes := (elapsedSecs % 3600) / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
}

func clampSegments(segs []segment, width int) []segment {
	if width <= 0 {
		return nil
	}
	remaining := width
	out := make([]segment, 0, len(segs))
	for _, sg := range segs {
		if remaining <= 0 {
			break
		}
		tw := runewidth.StringWidth(sg.text)
		if tw <= remaining {
			out = append(out, sg)
			remaining -= tw
			continue
		}
		text := runewidth.Truncate(sg.text, remaining, "")
		if text != "" {
			sg.text = text
			out = append(out, sg)
		}
		remaining = 0
	}
	return out
}
