package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/reader"
)

// renderList renders the current tab's entries, scrolled so the selection
// stays visible within height lines.
func (m Model) renderList(height int) string {
	styles := m.theme.Styles()
	entries := m.entries()
	if len(entries) == 0 {
		return styles.MutedText.Render(m.emptyText())
	}

	lines := make([]string, 0, len(entries)*2)
	selectedLine := 0
	for i, e := range entries {
		if e.section != "" {
			lines = append(lines, styles.AccentText.Bold(true).Render(e.section))
		}
		line := m.renderEntry(e)
		if i == m.selected[m.tab] {
			selectedLine = len(lines)
			line = styles.Selected.Width(m.width).Render(line)
		}
		lines = append(lines, line)
	}

	start := 0
	if selectedLine >= height {
		start = selectedLine - height + 1
	}
	end := min(start+height, len(lines))
	return strings.Join(lines[start:end], "\n")
}

func (m Model) emptyText() string {
	switch m.tab {
	case tabSearch:
		return "Press / to search."
	case tabDebrief:
		return "No debrief this week."
	case tabHome:
		if m.screens.Home.Loaded() && len(m.cache.Followed(content.OwnerPublication)) == 0 {
			return "Follow a publication to see its articles here."
		}
	}
	return "Loading..."
}

func (m Model) renderEntry(e entry) string {
	styles := m.theme.Styles()
	marker := "  "
	if m.busy(e) {
		marker = styles.WarningText.Render("… ")
	}

	switch {
	case e.recent != "":
		return marker + styles.Text.Render(e.recent)
	case e.owner != nil:
		return marker + renderOwner(styles, *e.owner)
	case e.row != nil:
		return marker + renderRow(styles, *e.row)
	}
	return ""
}

func renderRow(styles Styles, r reader.Row) string {
	ref := r.Item.Ref()
	flags := ""
	if r.Saved {
		flags += styles.SuccessText.Render("★")
	} else {
		flags += " "
	}
	if r.OwnerFollowed {
		flags += styles.InfoText.Render("●")
	} else {
		flags += " "
	}

	count := fmt.Sprintf("%4d", r.Shoutouts)
	if !r.CanShoutout {
		count = styles.MutedText.Render(count)
	}
	return strings.Join([]string{
		styles.KindStyle(ref.Kind).Width(10).Render(ref.Kind.String()),
		flags,
		count,
		styles.Text.Render(r.Item.Title()),
		styles.MutedText.Render(r.Item.OwnerSlug()),
	}, " ")
}

func renderOwner(styles Styles, o reader.OwnerRow) string {
	follow := "  "
	if o.Followed {
		follow = styles.InfoText.Render("● ")
	}
	return follow + lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Text.Bold(true).Render(o.Name),
		"  ",
		styles.MutedText.Render(fmt.Sprintf("%d items · %d shout-outs", o.Count, o.Shoutouts)),
	)
}

// renderDetail shows the opened item.
func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	r := *m.opened
	body := []string{
		styles.Text.Bold(true).Render(r.Item.Title()),
		styles.MutedText.Render(fmt.Sprintf("%s · %s · %d shout-outs · %d owner shout-outs",
			r.Item.OwnerSlug(), r.Item.Published().Format("Jan 2, 2006"), r.Shoutouts, r.OwnerShoutouts)),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Width(max(m.width-2, 10)).
		Render(strings.Join(body, "\n"))
}
