package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/herald/internal/state"
)

// renderMain renders header, banner, list and footer.
func (m Model) renderMain() string {
	parts := []string{m.renderHeader()}
	if banner := m.renderBanner(); banner != "" {
		parts = append(parts, banner)
	}
	if m.searching || m.tab == tabSearch {
		parts = append(parts, m.input.View())
	}
	used := len(parts) + 2
	if m.opened != nil {
		used += 4
	}
	parts = append(parts, m.renderList(max(m.height-used, 3)))
	if m.opened != nil {
		parts = append(parts, m.renderDetail())
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader renders the logo and tab bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, tabCount)
	for t := tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == m.tab {
			tabs = append(tabs, styles.Selected.Bold(true).Padding(0, 1).Render(label))
			continue
		}
		tabs = append(tabs, styles.MutedText.Padding(0, 1).Render(label))
	}
	line := styles.Logo.Render("herald") + "  " + strings.Join(tabs, "")
	return styles.Header.Width(m.width).Render(line)
}

// renderBanner shows the network-error affordance for the current tab. A
// failure on one tab never shows on another.
func (m Model) renderBanner() string {
	var (
		worst state.Failure
		keys  []string
	)
	for _, k := range m.tab.failureKeys() {
		f := m.failures.Get(k)
		if !f.Failed() {
			continue
		}
		keys = append(keys, k)
		if f.Kind > worst.Kind {
			worst = f
		}
	}
	if len(keys) == 0 {
		return ""
	}

	msg := "Couldn't reach the server. Press r to retry."
	if worst.Kind == state.ErrorPersistent {
		msg = fmt.Sprintf("Still offline after %d attempts. Press r to retry.", worst.ConsecutiveFailures)
	}
	return m.theme.Styles().Banner.Width(m.width).Render(msg)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	text := m.status
	if text == "" {
		text = "f follow  b bookmark  s shout out  enter open  r refresh  / search  ? help"
	}
	return styles.Footer.Width(m.width).Render(truncate(text, max(m.width-2, 1)))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
