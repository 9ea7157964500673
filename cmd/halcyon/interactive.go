package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	halcyon "github.com/halcyondb/halcyon-go"
	"github.com/halcyondb/halcyon-go/ffi"
	"github.com/halcyondb/halcyon-go/runtime"
	"github.com/halcyondb/halcyon-go/sqlitelib"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2D7D56")).
			Padding(0, 1)

	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateForm modelState = iota
	stateStarting
	stateReady
	stateClosed
)

const (
	fieldName = iota
	fieldHost
	fieldPort
	fieldUser
	fieldPassword
	fieldMin
	fieldMax
	fieldCount
)

type interactiveModel struct {
	opts     *ffi.ConnectOptions
	wasmFile string
	logger   *zap.Logger

	lib      halcyon.Library
	teardown func()
	rt       *runtime.Runtime
	handle   halcyon.Database

	inputs   []textinput.Model
	query    textinput.Model
	focusIdx int
	state    modelState
	log      []string
	result   string
	err      error
}

type startedMsg struct {
	lib      halcyon.Library
	teardown func()
	rt       *runtime.Runtime
	handle   halcyon.Database
	err      error
}

type queryResultMsg struct {
	result string
	err    error
}

type closedMsg struct{ err error }

func newInteractiveModel(opts *ffi.ConnectOptions, wasmFile string, logger *zap.Logger) *interactiveModel {
	m := &interactiveModel{
		opts:     opts,
		wasmFile: wasmFile,
		logger:   logger,
		state:    stateForm,
	}

	labels := []struct{ prompt, value string }{
		{"name: ", opts.Name},
		{"host: ", opts.Host},
		{"port: ", strconv.Itoa(int(opts.Port))},
		{"user: ", opts.User},
		{"password: ", opts.Password},
		{"min connections: ", strconv.Itoa(int(opts.MinConnections))},
		{"max connections: ", strconv.Itoa(int(opts.MaxConnections))},
	}
	m.inputs = make([]textinput.Model, fieldCount)
	for i, l := range labels {
		ti := textinput.New()
		ti.Prompt = l.prompt
		ti.SetValue(l.value)
		ti.Width = 40
		if i == fieldPassword {
			ti.EchoMode = textinput.EchoPassword
		}
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}

	m.query = textinput.New()
	m.query.Prompt = "sql> "
	m.query.Width = 60
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

// rebuildOptions validates the edited form back into connect options.
func (m *interactiveModel) rebuildOptions() error {
	port, err := strconv.ParseUint(m.inputs[fieldPort].Value(), 10, 32)
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}
	minConns, err := strconv.ParseUint(m.inputs[fieldMin].Value(), 10, 64)
	if err != nil {
		return fmt.Errorf("min connections: %w", err)
	}
	maxConns, err := strconv.ParseUint(m.inputs[fieldMax].Value(), 10, 64)
	if err != nil {
		return fmt.Errorf("max connections: %w", err)
	}
	opts, err := ffi.NewConnectOptions(
		m.opts.Backend,
		m.inputs[fieldName].Value(),
		m.inputs[fieldHost].Value(),
		uint32(port),
		m.inputs[fieldUser].Value(),
		m.inputs[fieldPassword].Value(),
		minConns,
		maxConns,
	)
	if err != nil {
		return err
	}
	m.opts = opts
	return nil
}

func (m *interactiveModel) startLifecycle() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lib, teardown, err := buildLibrary(ctx, m.wasmFile, m.logger)
	if err != nil {
		return startedMsg{err: err}
	}
	rt, err := runtime.New(lib, m.opts, runtime.WithLogger(m.logger))
	if err != nil {
		teardown()
		return startedMsg{err: err}
	}
	if err := rt.Start(ctx); err != nil {
		teardown()
		return startedMsg{err: err}
	}
	handle, err := rt.Database()
	if err != nil {
		rt.Close(ctx)
		teardown()
		return startedMsg{err: err}
	}
	return startedMsg{lib: lib, teardown: teardown, rt: rt, handle: handle}
}

func (m *interactiveModel) runQuery() tea.Msg {
	sqlite, ok := m.lib.(*sqlitelib.Library)
	if !ok {
		return queryResultMsg{err: fmt.Errorf("queries are only available with the in-process sqlite library")}
	}
	db, found := sqlite.DB(m.handle)
	if !found {
		return queryResultMsg{err: fmt.Errorf("database handle no longer valid")}
	}

	q := strings.TrimSpace(m.query.Value())
	if q == "" {
		return queryResultMsg{}
	}

	rows, err := db.Query(q)
	if err != nil {
		return queryResultMsg{err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return queryResultMsg{err: err}
	}

	var b strings.Builder
	b.WriteString(strings.Join(cols, " | "))
	b.WriteString("\n")
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	count := 0
	for rows.Next() && count < 50 {
		if err := rows.Scan(ptrs...); err != nil {
			return queryResultMsg{err: err}
		}
		cells := make([]string, len(cols))
		for i, v := range vals {
			if bs, ok := v.([]byte); ok {
				v = string(bs)
			}
			cells[i] = fmt.Sprintf("%v", v)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
		count++
	}
	if err := rows.Err(); err != nil {
		return queryResultMsg{err: err}
	}
	return queryResultMsg{result: fmt.Sprintf("%s(%d rows)", b.String(), count)}
}

func (m *interactiveModel) closeLifecycle() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	var err error
	if m.rt != nil {
		err = m.rt.Close(ctx)
	}
	if m.teardown != nil {
		m.teardown()
	}
	return closedMsg{err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.state == stateReady {
				m.state = stateClosed
				return m, m.closeLifecycle
			}
			return m, tea.Quit

		case "q":
			if m.state == stateClosed {
				return m, tea.Quit
			}

		case "tab", "shift+tab", "down", "up":
			if m.state == stateForm {
				m.inputs[m.focusIdx].Blur()
				if msg.String() == "shift+tab" || msg.String() == "up" {
					m.focusIdx = (m.focusIdx + fieldCount - 1) % fieldCount
				} else {
					m.focusIdx = (m.focusIdx + 1) % fieldCount
				}
				m.inputs[m.focusIdx].Focus()
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateForm:
				if err := m.rebuildOptions(); err != nil {
					m.err = err
					return m, nil
				}
				m.err = nil
				m.state = stateStarting
				m.log = append(m.log, "starting native runtime...")
				return m, m.startLifecycle

			case stateReady:
				return m, m.runQuery

			case stateClosed:
				return m, tea.Quit
			}

		case "esc":
			if m.state == stateReady {
				m.state = stateClosed
				return m, m.closeLifecycle
			}
		}

	case startedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateForm
			return m, nil
		}
		m.lib = msg.lib
		m.teardown = msg.teardown
		m.rt = msg.rt
		m.handle = msg.handle
		m.state = stateReady
		m.log = append(m.log,
			fmt.Sprintf("state: %s", m.rt.State()),
			fmt.Sprintf("database handle: %#x", uint64(m.handle)))
		m.query.Focus()
		return m, nil

	case queryResultMsg:
		m.err = msg.err
		m.result = msg.result
		m.query.SetValue("")
		return m, nil

	case closedMsg:
		m.err = msg.err
		m.log = append(m.log, "state: closed")
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateForm:
		m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
	case stateReady:
		m.query, cmd = m.query.Update(msg)
	}
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Halcyon"))
	b.WriteString(" ")
	b.WriteString(m.opts.Backend.String())
	b.WriteString("\n\n")

	switch m.state {
	case stateForm:
		b.WriteString("Connection options:\n\n")
		for i := range m.inputs {
			b.WriteString(m.inputs[i].View())
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter connect • ctrl+c quit"))

	case stateStarting:
		for _, line := range m.log {
			b.WriteString(stateStyle.Render(line))
			b.WriteString("\n")
		}

	case stateReady:
		for _, line := range m.log {
			b.WriteString(stateStyle.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.query.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		} else if m.result != "" {
			b.WriteString(resultStyle.Render(m.result))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter run query • esc shutdown"))

	case stateClosed:
		for _, line := range m.log {
			b.WriteString(stateStyle.Render(line))
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter or q to quit"))
	}

	return b.String()
}

func runInteractive(opts *ffi.ConnectOptions, wasmFile string, logger *zap.Logger) error {
	p := tea.NewProgram(newInteractiveModel(opts, wasmFile, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
