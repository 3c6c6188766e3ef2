package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/herald/internal/analytics"
	"github.com/five82/herald/internal/reader"
)

type tab int

const (
	tabHome tab = iota
	tabOwners
	tabMagazines
	tabFlyers
	tabSearch
	tabDebrief
	tabCount
)

func (t tab) String() string {
	switch t {
	case tabHome:
		return "Home"
	case tabOwners:
		return "Publications"
	case tabMagazines:
		return "Magazines"
	case tabFlyers:
		return "Flyers"
	case tabSearch:
		return "Search"
	case tabDebrief:
		return "Debrief"
	default:
		return "?"
	}
}

// failureKeys are the controller keys whose failures belong to a tab.
func (t tab) failureKeys() []string {
	switch t {
	case tabHome:
		return []string{"home/trending", "home/following"}
	case tabOwners:
		return []string{"owners/publications", "owners/organizations"}
	case tabMagazines:
		return []string{"magazines"}
	case tabFlyers:
		return []string{"flyers/upcoming", "flyers/past"}
	case tabSearch:
		return []string{"search/articles", "search/magazines", "search/flyers"}
	case tabDebrief:
		return []string{"debrief"}
	default:
		return nil
	}
}

// entry is one selectable line of a tab.
type entry struct {
	section string
	row     *reader.Row
	owner   *reader.OwnerRow
	recent  string
	source  analytics.NavigationSource
	// more fetches the page after this entry when it is the trailing one.
	more func(ctx context.Context) bool
}

func (m Model) entries() []entry {
	s := m.screens
	switch m.tab {
	case tabHome:
		out := rowEntries("Trending", s.Home.TrendingRows(), analytics.SourceTrendingArticles, nil)
		following := s.Home.FollowingRows()
		var more func(context.Context) bool
		if n := len(following); n > 0 {
			afterID := following[n-1].Item.Ref().ID
			more = func(ctx context.Context) bool { return s.Home.MoreFollowing(ctx, afterID) }
		}
		return append(out, rowEntries("Following", following, analytics.SourceFollowingArticles, more)...)
	case tabOwners:
		rows := s.Owners.Rows()
		out := make([]entry, 0, len(rows))
		for i := range rows {
			section := ""
			if i == 0 || rows[i].Kind != rows[i-1].Kind {
				section = rows[i].Kind.String() + "s"
			}
			out = append(out, entry{section: section, owner: &rows[i], source: analytics.SourcePublicationList})
		}
		return out
	case tabMagazines:
		rows := s.Magazines.Rows()
		var more func(context.Context) bool
		if n := len(rows); n > 0 {
			afterID := rows[n-1].Item.Ref().ID
			more = func(ctx context.Context) bool { return s.Magazines.More(ctx, afterID) }
		}
		return rowEntries("Magazines", rows, analytics.SourceMagazineList, more)
	case tabFlyers:
		return rowEntries("Flyers", s.Flyers.Rows(), analytics.SourceFlyerList, nil)
	case tabSearch:
		if strings.TrimSpace(s.Search.Query()) == "" {
			recent := s.Search.Recent()
			out := make([]entry, 0, len(recent))
			for i, q := range recent {
				section := ""
				if i == 0 {
					section = "Recent searches"
				}
				out = append(out, entry{section: section, recent: q, source: analytics.SourceSearch})
			}
			return out
		}
		return rowEntries("Results for "+s.Search.Query(), s.Search.Rows(), analytics.SourceSearch, nil)
	case tabDebrief:
		out := rowEntries("Read this week", s.Debrief.ReadRows(), analytics.SourceWeeklyDebrief, nil)
		return append(out, rowEntries("You might like", s.Debrief.RandomRows(), analytics.SourceWeeklyDebrief, nil)...)
	}
	return nil
}

func rowEntries(section string, rows []reader.Row, source analytics.NavigationSource, more func(context.Context) bool) []entry {
	out := make([]entry, len(rows))
	for i := range rows {
		out[i] = entry{row: &rows[i], source: source}
		if i == 0 {
			out[i].section = section
		}
	}
	if n := len(out); n > 0 {
		out[n-1].more = more
	}
	return out
}

// loadedMsg reports that a fetch for a tab finished.
type loadedMsg struct{ tab tab }

func (m Model) run(t tab, fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return loadedMsg{tab: t}
	}
}

// appear issues the initial fetch of a tab. Controllers ignore repeats.
func (m Model) appear(t tab) tea.Cmd {
	s := m.screens
	return m.run(t, func(ctx context.Context) {
		switch t {
		case tabHome:
			s.Home.Start(ctx)
		case tabOwners:
			s.Owners.Start(ctx)
		case tabMagazines:
			s.Magazines.StartInitialFetch(ctx)
		case tabFlyers:
			s.Flyers.Start(ctx)
		case tabDebrief:
			s.Debrief.StartInitialFetch(ctx)
		}
	})
}

// refresh reloads a loaded tab, or retries the initial fetch of one that
// never loaded.
func (m Model) refresh(t tab) tea.Cmd {
	s := m.screens
	return m.run(t, func(ctx context.Context) {
		switch t {
		case tabHome:
			s.Home.StartOrReload(ctx)
		case tabOwners:
			s.Owners.StartOrReload(ctx)
		case tabMagazines:
			if !s.Magazines.StartInitialFetch(ctx) {
				s.Magazines.Refresh(ctx)
			}
		case tabFlyers:
			s.Flyers.StartOrReload(ctx)
		case tabSearch:
			s.Search.Refresh(ctx)
		case tabDebrief:
			if !s.Debrief.StartInitialFetch(ctx) {
				s.Debrief.Refresh(ctx)
			}
		}
	})
}

func (m Model) submitSearch(query string) tea.Cmd {
	s := m.screens
	return m.run(tabSearch, func(ctx context.Context) { s.Search.Submit(ctx, query) })
}
