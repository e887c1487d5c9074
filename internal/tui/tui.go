// Package tui is the interactive console that runs next to the HTTP server.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/llmserver/internal/models"
	"github.com/tatianab/llmserver/internal/svc"
)

type sessionState int

const (
	stateReady sessionState = iota
	stateRunning
)

type model struct {
	state     sessionState
	ctx       context.Context
	console   *Console
	svcCtx    *svc.ServiceContext
	textInput textinput.Model
	viewport  viewport.Model
	log       string
	width     int
	height    int

	// game is the context whose turn is shown in the side panel.
	game string
	turn *models.Turn
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func newModel(ctx context.Context, svcCtx *svc.ServiceContext) model {
	ti := textinput.New()
	ti.Placeholder = "Type a command or 'help'..."
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 80

	return model{
		state:     stateReady,
		ctx:       ctx,
		console:   NewConsole(svcCtx),
		svcCtx:    svcCtx,
		textInput: ti,
		viewport:  viewport.New(80, 20),
		log:       titleStyle.Render("LLM Server Console") + "\n\nType 'help' for a list of commands.\n",
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type resultMsg struct {
	result Result
	err    error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.state == stateRunning {
				return m, nil
			}
			line := strings.TrimSpace(m.textInput.Value())
			if line == "" {
				return m, nil
			}
			m.textInput.Reset()
			m.appendLog(userStyle.Width(m.logWidth()).Render("> " + line))
			m.state = stateRunning
			return m, m.run(m.expand(line))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		m.viewport.SetContent(m.log)

	case resultMsg:
		m.state = stateReady
		if msg.err != nil {
			m.appendLog(errorStyle.Width(m.logWidth()).Render("Error: " + msg.err.Error()))
			return m, nil
		}
		r := msg.result
		if r.Output != "" {
			m.appendLog(outputStyle.Width(m.logWidth()).Render(r.Output))
		}
		switch {
		case r.Ended && r.Game == m.game:
			m.game, m.turn = "", nil
		case r.Turn != nil:
			m.game, m.turn = r.Game, r.Turn
		}
		if r.Quit {
			return m, tea.Quit
		}
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// expand turns a bare action number into a turn of the game in the side panel.
func (m model) expand(line string) string {
	if m.turn == nil {
		return line
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(m.turn.Actions) {
		return line
	}
	return fmt.Sprintf("game_turn %q %q", m.game, m.turn.Actions[n-1].Description)
}

func (m model) run(line string) tea.Cmd {
	return func() tea.Msg {
		r, err := m.console.Execute(m.ctx, line)
		return resultMsg{result: r, err: err}
	}
}

func (m *model) appendLog(s string) {
	m.log += "\n" + s + "\n"
	m.viewport.SetContent(m.log)
	m.viewport.GotoBottom()
}

func (m model) logWidth() int {
	if m.width == 0 {
		return 80
	}
	return int(float64(m.width) * 0.75)
}

func (m model) View() string {
	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewport.View(),
		m.renderPanel(),
	)

	help := "Commands: help, exit. Type a number to pick an action of the shown game."
	if m.state == stateRunning {
		help = "Working... please wait."
	}

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		mainView,
		"\n"+m.textInput.View(),
		"\n"+helpStyle.Render(help),
	) + "\n"
}

func (m model) renderPanel() string {
	var content string
	if m.turn != nil {
		content = titleStyle.Render("GAME") + "\n" + m.game + "\n\n"
		if m.turn.Image.Top != "" {
			content += m.turn.Image.Top + "\n\n"
		}
		content += titleStyle.Render("ACTIONS") + "\n"
		for i, a := range m.turn.Actions {
			content += fmt.Sprintf("%d. %s\n", i+1, a.Description)
		}
	} else {
		content = titleStyle.Render("CONTEXTS") + "\n"
		list := m.svcCtx.Manager.ListContexts()
		if len(list) == 0 {
			content += "(none)"
		}
		for _, s := range list {
			content += fmt.Sprintf("- %s (%s)\n", s.Name, s.Service)
		}
	}

	panelWidth := int(float64(m.width) * 0.23)
	return panelStyle.Width(panelWidth).Height(m.viewport.Height).Render(content)
}

// Run blocks until the user leaves the console or ctx is cancelled.
func Run(ctx context.Context, svcCtx *svc.ServiceContext) error {
	p := tea.NewProgram(newModel(ctx, svcCtx), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
