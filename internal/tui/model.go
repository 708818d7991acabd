package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quotes-cli/internal/features"
	"quotes-cli/internal/feed"
	"quotes-cli/internal/logger"
	"quotes-cli/internal/stream"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	colorStart  = lipgloss.Color("#6bf06b")
	colorStop   = lipgloss.Color("#f06b6b")
	colorAccent = lipgloss.Color("#7D56F4")
	colorMuted  = lipgloss.Color("#7D7A85")
)

// Stream 抽象订阅生命周期管理，TUI 只依赖这几个操作。
type Stream interface {
	Enable(ctx context.Context) (string, error)
	Disable() bool
	Events() <-chan stream.Event
	URL() string
}

type Options struct {
	Stream         Stream
	Title          string
	Features       features.Set
	CopyableOutput bool
	// CopyText 默认写入系统剪贴板。
	CopyText func(text string) error
	Clock    func() time.Time
	Logger   *logger.LogEntry
}

type streamEventMsg struct {
	Event stream.Event
}

// streamGoneMsg 表示事件通道已关闭，不再有订阅事件。
type streamGoneMsg struct{}

type toggleMsg struct{}

type copiedMsg struct {
	Text string
	Err  error
}

type Model struct {
	feed     *feed.Feed
	stream   Stream
	viewport viewport.Model
	spin     spinner.Model
	status   *StatusIndicatorWidget
	title    string
	features features.Set
	copyText func(string) error
	log      *logger.LogEntry

	streamGone bool
	notice     string
	showHelp   bool
	width      int
	height     int
}

func New(opts Options) *Model {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Quotes"
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("tui")
	}
	feats := opts.Features
	if feats == nil {
		feats = features.Defaults()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(colorAccent)

	vp := viewport.New(80, 12)
	// 滚动键由 Model 统一处理，避免与切换键冲突。
	vp.KeyMap = viewport.KeyMap{}

	m := &Model{
		feed:     feed.New(),
		stream:   opts.Stream,
		viewport: vp,
		spin:     spin,
		status:   NewStatusIndicatorWidget(StatusIndicatorOptions{Clock: opts.Clock}),
		title:    title,
		features: feats,
		copyText: copyText,
		log:      log,
		width:    80,
		height:   24,
	}
	m.resize(m.width, m.height)
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenStream(), m.spin.Tick}
	if m.features.Enabled(features.Autostart) {
		cmds = append(cmds, func() tea.Msg { return toggleMsg{} })
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case streamEventMsg:
		m.handleStreamEvent(msg.Event)
		return m, m.listenStream()
	case streamGoneMsg:
		m.streamGone = true
		if m.feed.Disconnect() {
			m.status.SetState(StatusDisconnected, "")
		}
		return m, nil
	case toggleMsg:
		m.toggle()
		return m, nil
	case copiedMsg:
		if msg.Err != nil {
			m.notice = fmt.Sprintf("copy failed: %v", msg.Err)
			m.log.WithFields(logger.ErrField(msg.Err)).Warn("copy to clipboard failed")
		} else {
			m.notice = "copied latest quote"
		}
		return m, nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.handleScrollKeys(msg) {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.Shutdown()
			return m, tea.Quit
		case " ", "space", "enter", "s":
			m.toggle()
		case "y":
			if cmd := m.copyLatest(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "esc":
			m.showHelp = false
			m.notice = ""
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	width := maxInt(20, m.width)
	sections := []string{
		renderTitle(m.title, width),
		m.viewport.View(),
		renderToggle(m.feed.Connected(), width),
		m.statusLine(width),
		renderHints(width),
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, content, modalStyle.Render(helpText))
	}
	return content
}

// Messages returns the received quotes in arrival order.
func (m *Model) Messages() []string {
	return m.feed.Messages()
}

// Connected reports the state of the toggle.
func (m *Model) Connected() bool {
	return m.feed.Connected()
}

// Shutdown 关闭当前订阅；退出前总会调用，重复调用无副作用。
func (m *Model) Shutdown() {
	if m.stream != nil {
		m.stream.Disable()
	}
	if m.feed.Disconnect() {
		m.status.SetState(StatusDisconnected, "")
	}
}

func (m *Model) toggle() {
	if m.feed.Connected() {
		m.stream.Disable()
		m.feed.Disconnect()
		m.status.SetState(StatusDisconnected, "")
		m.log.Info("stream disabled by user")
		return
	}
	if m.stream == nil || m.streamGone {
		m.status.SetState(StatusError, "stream unavailable")
		return
	}
	id, err := m.stream.Enable(context.Background())
	if err != nil {
		m.log.WithFields(logger.ErrField(err)).Error("enable stream failed")
		m.status.SetState(StatusError, err.Error())
		return
	}
	m.feed.Connect(id)
	m.notice = ""
	m.status.SetState(StatusConnecting, m.stream.URL())
	m.log.WithField(logger.SubscriptionKey, id).Info("stream enabled by user")
}

func (m *Model) handleStreamEvent(ev stream.Event) {
	if !m.feed.Owns(ev.SubscriptionID) {
		m.log.WithField(logger.SubscriptionKey, ev.SubscriptionID).
			WithField("kind", ev.Kind.String()).
			Debug("dropping event from inactive subscription")
		return
	}
	switch ev.Kind {
	case stream.EventOpen:
		m.status.SetState(StatusConnected, "")
	case stream.EventMessage:
		if m.feed.Append(ev.SubscriptionID, ev.Data) {
			m.refreshContent()
		}
	case stream.EventClosed:
		m.stream.Disable()
		m.feed.Disconnect()
		detail := "closed"
		if ev.Err != nil {
			detail = ev.Err.Error()
		}
		m.status.SetState(StatusError, detail)
		m.log.WithField(logger.SubscriptionKey, ev.SubscriptionID).
			WithFields(logger.ErrField(ev.Err)).
			Warn("connection closed because of an error")
	}
}

func (m *Model) listenStream() tea.Cmd {
	if m.stream == nil {
		return nil
	}
	ch := m.stream.Events()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamGoneMsg{}
		}
		return streamEventMsg{Event: ev}
	}
}

func (m *Model) copyLatest() tea.Cmd {
	if !m.features.Enabled(features.Clipboard) {
		return nil
	}
	latest, ok := m.feed.Latest()
	if !ok {
		m.notice = "nothing to copy yet"
		return nil
	}
	copyText := m.copyText
	return func() tea.Msg {
		return copiedMsg{Text: latest, Err: copyText(latest)}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	titleHeight := lipgloss.Height(renderTitle(m.title, maxInt(20, width)))
	const toggleHeight, statusHeight, hintsHeight = 1, 1, 1
	vpHeight := height - titleHeight - toggleHeight - statusHeight - hintsHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = maxInt(20, width)
	m.viewport.Height = vpHeight
	m.refreshContent()
}

// refreshContent 重新渲染消息列表；开启 autoscroll 时滚动到底部。
func (m *Model) refreshContent() {
	m.viewport.SetContent(renderMessages(m.feed.Messages(), m.viewport.Width))
	if m.features.Enabled(features.Autoscroll) {
		m.viewport.GotoBottom()
	}
}

func (m *Model) handleScrollKeys(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyPgUp:
		m.viewport.ViewUp()
	case tea.KeyPgDown:
		m.viewport.ViewDown()
	case tea.KeyHome:
		m.viewport.GotoTop()
	case tea.KeyEnd:
		m.viewport.GotoBottom()
	case tea.KeyUp:
		m.viewport.LineUp(1)
	case tea.KeyDown:
		m.viewport.LineDown(1)
	default:
		return false
	}
	return true
}

func (m *Model) statusLine(width int) string {
	frame := ""
	if m.status.State() == StatusConnecting {
		frame = m.spin.View()
	}
	info := fmt.Sprintf("%d quotes", m.feed.Len())
	if m.feed.Len() == 1 {
		info = "1 quote"
	}
	if m.notice != "" {
		info += " • " + m.notice
	}
	// 计数与提示优先，状态行占用剩余宽度。
	statusWidth := width - 4 - runewidth.StringWidth(info)
	line := m.status.Render(statusWidth, frame)
	if line != "" {
		line += "  "
	}
	line += lipgloss.NewStyle().Foreground(colorMuted).Render(info)
	return lipgloss.NewStyle().
		Padding(0, 1).
		Width(width).
		MaxHeight(1).
		Render(line)
}

func renderMessages(messages []string, width int) string {
	if len(messages) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(width).
			Align(lipgloss.Center).
			Render("Press space to start quotes.")
	}
	older := lipgloss.NewStyle().Foreground(colorMuted).Faint(true).Width(width).Align(lipgloss.Center)
	latest := lipgloss.NewStyle().Bold(true).Width(width).Align(lipgloss.Center)
	blocks := make([]string, 0, len(messages))
	for i, msg := range messages {
		if i == len(messages)-1 {
			blocks = append(blocks, latest.Render(msg))
			continue
		}
		blocks = append(blocks, older.Render(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func renderTitle(title string, width int) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccent).
		Width(width).
		Align(lipgloss.Center).
		Padding(1, 0).
		Render(title)
}

func renderToggle(connected bool, width int) string {
	label := "Start Quotes"
	color := colorStart
	if connected {
		label = "Stop Quotes"
		color = colorStop
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Width(width).
		Align(lipgloss.Center).
		Render("[ " + label + " ]")
}

func renderHints(width int) string {
	return lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1).
		Width(width).
		MaxHeight(1).
		Render("space 开始/停止 • ↑/↓ 滚动 • y 复制 • ? 帮助 • q 退出")
}

const helpText = `快捷键
space / enter / s  开始或停止接收
↑ ↓ PgUp PgDn Home End  滚动
y  复制最新一条
?  切换帮助 • esc 关闭
q / Ctrl+C  退出（关闭连接）`

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(1).
	BorderForeground(lipgloss.Color("#FFB454"))

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
