package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Result 返回 TUI 运行后的必要信息。
type Result struct {
	Messages []string
}

// Run 封装 Bubble Tea 入口。无论以何种方式退出，都会先关闭当前订阅再返回。
func Run(opts Options) (Result, error) {
	programOptions := []tea.ProgramOption{}
	if !opts.CopyableOutput {
		programOptions = append(programOptions, tea.WithAltScreen())
	}
	model := New(opts)
	defer model.Shutdown()

	program := tea.NewProgram(model, programOptions...)
	m, err := program.Run()
	if err != nil {
		return Result{Messages: model.Messages()}, err
	}
	tuiModel, ok := m.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	return Result{Messages: tuiModel.Messages()}, nil
}
