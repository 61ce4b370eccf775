package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/taxcalc/internal/output"
)

// View renders the current state of the application
func (m Model) View() string {
	sections := []string{
		m.renderTitleBar(),
		m.renderForm(),
	}

	switch {
	case m.loading:
		sections = append(sections, InfoStyle.Render("Calculating..."))
	case m.err != nil:
		sections = append(sections, ErrorStyle.Render("Error: "+m.err.Error()))
	case m.result != nil || m.schedule != nil:
		sections = append(sections, m.renderReport())
	case m.info != "":
		sections = append(sections, InfoStyle.Render(m.info))
	}

	sections = append(sections, m.renderStatusBar())
	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderTitleBar renders the application title and the active rate year
func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("TAXCALC - Tax Calculation Engine")
	subtitle := SubtitleStyle.Render("No rate table loaded")
	if m.engine != nil && m.engine.Rates != nil {
		subtitle = SubtitleStyle.Render(fmt.Sprintf("%d rates from %s", m.engine.Rates.Current().TaxYear, m.engine.Rates.LoaderDescription()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderForm renders the input fields and filing status selector
func (m Model) renderForm() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ◀ %s ▶\n", FieldLabelStyle.Render("Filing Status"), m.FilingStatus().Label())
	for i, in := range m.inputs {
		label := FieldLabelStyle.Render(fieldLabels[i])
		if i == m.focus {
			label = FocusedLabelStyle.Render(fieldLabels[i])
		}
		fmt.Fprintf(&b, "%s %s\n", label, in.View())
	}
	return PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// renderReport reuses the console formatter for the result panel
func (m Model) renderReport() string {
	data, err := output.ConsoleFormatter{}.Format(&output.Report{Result: m.result, Schedule: m.schedule})
	if err != nil {
		return ErrorStyle.Render("Error: " + err.Error())
	}
	return PanelStyle.Render(strings.TrimRight(string(data), "\n"))
}

// renderStatusBar renders key bindings
func (m Model) renderStatusBar() string {
	bindings := []struct{ key, desc string }{
		{keys.Next.Help().Key, keys.Next.Help().Desc},
		{keys.Status.Help().Key, keys.Status.Help().Desc},
		{keys.Calculate.Help().Key, keys.Calculate.Help().Desc},
		{keys.Estimate.Help().Key, keys.Estimate.Help().Desc},
		{keys.Refresh.Help().Key, keys.Refresh.Help().Desc},
		{keys.Clear.Help().Key, keys.Clear.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		parts = append(parts, kb.key+" "+kb.desc)
	}
	return StatusBarStyle.Render(strings.Join(parts, " • "))
}
