package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/taxcalc/internal/domain"
)

type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Status    key.Binding
	Calculate key.Binding
	Estimate  key.Binding
	Refresh   key.Binding
	Clear     key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Next:      key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:      key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	Status:    key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "filing status")),
	Calculate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "calculate")),
	Estimate:  key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "quarterly estimate")),
	Refresh:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload rates")),
	Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case CalculationStartedMsg:
		m.loading = true
		return m, nil

	case CalculationCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.result = msg.Result
		m.schedule = nil
		return m, nil

	case EstimateCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.schedule = msg.Schedule
		m.result = nil
		return m, nil

	case RatesRefreshedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.info = fmt.Sprintf("Loaded %d rates", msg.TaxYear)
		return m, nil
	}

	return m.updateFocused(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Next):
		cmd := m.setFocus((m.focus + 1) % fieldCount)
		return m, cmd

	case key.Matches(msg, keys.Prev):
		cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd

	case key.Matches(msg, keys.Status):
		m.statusIndex = (m.statusIndex + 1) % len(domain.FilingStatuses)
		return m, nil

	case key.Matches(msg, keys.Clear):
		m.result = nil
		m.schedule = nil
		m.err = nil
		m.info = ""
		return m, nil

	case key.Matches(msg, keys.Calculate), key.Matches(msg, keys.Estimate):
		if m.loading {
			return m, nil
		}
		input, err := m.BuildInput()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.info = ""
		m.loading = true
		if key.Matches(msg, keys.Estimate) {
			return m, estimateCmd(m.engine, input)
		}
		return m, calculateCmd(m.engine, input)

	case key.Matches(msg, keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, refreshRatesCmd(m.engine)
	}

	return m.updateFocused(msg)
}

// setFocus moves keyboard focus to field i
func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// updateFocused delegates to the focused text input
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}
