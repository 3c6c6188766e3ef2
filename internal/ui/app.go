package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/engage"
	"github.com/five82/herald/internal/prefs"
	"github.com/five82/herald/internal/reader"
	"github.com/five82/herald/internal/state"
)

const defaultRedraw = time.Second

// Push is a destination opened from a push notification.
type Push struct {
	Article *content.Article
	Debrief bool
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Screens    reader.Screens
	Reconciler *engage.Reconciler
	Cache      *prefs.Cache
	Failures   *state.Board
	Pushes     <-chan Push
	Logger     *slog.Logger
	// Redraw is how often busy markers and counts are re-read.
	Redraw    time.Duration
	ThemeName string
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx        context.Context
	screens    reader.Screens
	reconciler *engage.Reconciler
	cache      *prefs.Cache
	failures   *state.Board
	pushes     <-chan Push
	logger     *slog.Logger
	redraw     time.Duration

	keys  keyMap
	theme Theme

	width  int
	height int
	ready  bool

	tab      tab
	selected [tabCount]int

	searching bool
	input     textinput.Model

	showHelp bool
	status   string
	opened   *reader.Row
}

// New creates the model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	failures := opts.Failures
	if failures == nil {
		failures = &state.Board{}
	}
	redraw := opts.Redraw
	if redraw <= 0 {
		redraw = defaultRedraw
	}

	input := textinput.New()
	input.Placeholder = "Search articles, magazines and flyers"
	input.Prompt = "/ "
	input.CharLimit = 120

	return Model{
		ctx:        ctx,
		screens:    opts.Screens,
		reconciler: opts.Reconciler,
		cache:      opts.Cache,
		failures:   failures,
		pushes:     opts.Pushes,
		logger:     logger.With("component", "ui"),
		redraw:     redraw,
		keys:       defaultKeyMap(),
		theme:      GetTheme(opts.ThemeName),
		input:      input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.redraw), m.appear(tabHome)}
	if m.pushes != nil {
		cmds = append(cmds, waitPush(m.pushes))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		return m, nil

	case tickMsg:
		m.clampSelection()
		return m, tickCmd(m.redraw)

	case loadedMsg:
		m.clampSelection()
		if msg.tab == m.tab {
			return m, m.maybeMore()
		}
		return m, nil

	case pushMsg:
		return m.handlePush(Push(msg))
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % tabCount)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	case key.Matches(msg, m.keys.Search):
		m.tab = tabSearch
		m.searching = true
		m.input.SetValue(m.screens.Search.Query())
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Refresh):
		m.status = "refreshing " + m.tab.String()
		return m, m.refresh(m.tab)
	case key.Matches(msg, m.keys.Cancel):
		m.opened = nil
		m.status = ""
		return m, nil
	}
	for i, b := range m.keys.Tabs {
		if key.Matches(msg, b) {
			return m.switchTab(tab(i))
		}
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, m.maybeMore()
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.selected[m.tab] = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.selected[m.tab] = max(len(m.entries())-1, 0)
		return m, m.maybeMore()
	}
	return m.handleAction(msg)
}

func (m Model) handleAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e, ok := m.current()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		if e.recent != "" {
			return m, m.submitSearch(e.recent)
		}
		if e.row != nil {
			m.reconciler.Open(e.row.Item, e.source)
			row := *e.row
			m.opened = &row
		}
	case key.Matches(msg, m.keys.Share):
		if e.row != nil {
			m.reconciler.Share(e.row.Item, e.source)
			m.status = "shared " + e.row.Item.Title()
		}
	case key.Matches(msg, m.keys.Follow):
		return m.toggleFollow(e)
	case key.Matches(msg, m.keys.Bookmark):
		if e.row != nil {
			if m.reconciler.ToggleBookmark(e.row.Item, e.source) {
				m.status = "saved " + e.row.Item.Title()
			} else {
				m.status = "removed " + e.row.Item.Title()
			}
		}
	case key.Matches(msg, m.keys.Shoutout):
		if e.row != nil {
			m.shoutout(e)
		}
	case key.Matches(msg, m.keys.Forget):
		if e.recent != "" {
			m.screens.Search.Forget(e.recent)
			m.clampSelection()
		}
	}
	return m, nil
}

func (m Model) toggleFollow(e entry) (tea.Model, tea.Cmd) {
	var (
		owner content.OwnerKind
		slug  string
	)
	switch {
	case e.owner != nil:
		owner, slug = e.owner.Kind, e.owner.Slug
	case e.row != nil:
		owner, slug = content.OwnerKindOf(e.row.Item.Ref().Kind), e.row.Item.OwnerSlug()
	default:
		return m, nil
	}
	if m.reconciler.ToggleFollow(owner, slug, e.source) {
		m.status = "following " + slug
	} else {
		m.status = "unfollowed " + slug
	}
	if owner != content.OwnerPublication {
		return m, nil
	}
	// The following feed is keyed on the followed set.
	m.screens.Home.ResetFollowing()
	if m.tab == tabHome {
		return m, m.appear(tabHome)
	}
	return m, nil
}

func (m *Model) shoutout(e entry) {
	ok, err := m.reconciler.IncrementShoutout(e.row.Item, e.source)
	switch {
	case errors.Is(err, engage.ErrUnsupportedKind):
		m.status = "flyers cannot be shouted out"
	case err != nil:
		m.logger.Warn("shout-out rejected", "id", e.row.Item.Ref().ID, "error", err)
		m.status = "shout-out failed: " + err.Error()
	case !ok:
		m.status = "already shouted out"
	default:
		m.status = "shouted out " + e.row.Item.Title()
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.searching = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.input.Blur()
		m.selected[tabSearch] = 0
		query := m.input.Value()
		m.status = fmt.Sprintf("searching %q", query)
		return m, m.submitSearch(query)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePush(p Push) (tea.Model, tea.Cmd) {
	next := waitPush(m.pushes)
	m.logger.Debug("push received", "article", p.Article != nil, "debrief", p.Debrief)
	switch {
	case p.Article != nil:
		row := reader.Rows(m.cache, []content.Article{*p.Article})[0]
		m.opened = &row
		m.status = "opened from notification"
		return m, next
	case p.Debrief:
		m.tab = tabDebrief
		m.status = "weekly debrief"
		return m, tea.Batch(next, m.appear(tabDebrief))
	}
	return m, next
}

func (m Model) switchTab(t tab) (tea.Model, tea.Cmd) {
	m.tab = t
	m.opened = nil
	m.status = ""
	m.clampSelection()
	return m, m.appear(t)
}

func (m *Model) move(delta int) {
	n := len(m.entries())
	if n == 0 {
		return
	}
	m.selected[m.tab] = min(max(m.selected[m.tab]+delta, 0), n-1)
}

func (m *Model) clampSelection() {
	n := len(m.entries())
	m.selected[m.tab] = min(m.selected[m.tab], max(n-1, 0))
}

func (m Model) current() (entry, bool) {
	entries := m.entries()
	i := m.selected[m.tab]
	if i < 0 || i >= len(entries) {
		return entry{}, false
	}
	return entries[i], true
}

// maybeMore asks for the next page when the selection sits on the trailing
// entry of a paginated list.
func (m Model) maybeMore() tea.Cmd {
	e, ok := m.current()
	if !ok || e.more == nil {
		return nil
	}
	more := e.more
	return m.run(m.tab, func(ctx context.Context) { more(ctx) })
}

func (m Model) busy(e entry) bool {
	switch {
	case e.owner != nil:
		return m.reconciler.FollowBusy(e.owner.Kind, e.owner.Slug)
	case e.row != nil:
		ref := e.row.Item.Ref()
		return m.reconciler.BookmarkBusy(ref) || m.reconciler.ShoutoutBusy(ref.ID)
	}
	return false
}

type tickMsg time.Time

type pushMsg Push

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitPush(ch <-chan Push) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return pushMsg(p)
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
