// Package tui is the interactive terminal browser for a subreddit media feed.
//
// The model never mutates feed state itself: it renders controller
// snapshots and turns keys and sentinel visibility into controller calls.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gauthierbraillon/redditview/internal/display"
	"github.com/gauthierbraillon/redditview/internal/feed"
	"github.com/gauthierbraillon/redditview/internal/media"
	"github.com/gauthierbraillon/redditview/internal/reddit"
)

const (
	// prefetchTrigger is how close to the last post the cursor must get for
	// the sentinel to count as visible.
	prefetchTrigger = 3
	itemLines       = 3
	chromeLines     = 7
)

// Feed is the controller surface the browser drives.
type Feed interface {
	feed.Loader
	SubmitQuery(ctx context.Context, q reddit.Query) error
	ChangeCategory(ctx context.Context, c reddit.Category) error
	Reset()
}

// snapshotMsg carries a controller snapshot into the update loop.
type snapshotMsg struct {
	snap feed.Snapshot
}

// actionDoneMsg reports the result of a controller call.
type actionDoneMsg struct {
	err error
}

// openedMsg reports the result of opening a link.
type openedMsg struct {
	err error
}

// Model holds the browser state.
type Model struct {
	ctx     context.Context
	feed    Feed
	updates *Updates
	scroll  *feed.ScrollSignal
	open    func(string) error
	initial reddit.Query

	keys      keyMap
	spinner   spinner.Model
	input     textinput.Model
	formatter *display.TerminalFormatter

	snap      feed.Snapshot
	cursor    int
	searching bool
	notice    string
	width     int
	height    int
}

// New creates a browser over f. updates must be the observer registered on
// the controller behind f. open is called with http(s) URLs only.
func New(ctx context.Context, f Feed, updates *Updates, open func(string) error, initial reddit.Query) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	ti := textinput.New()
	ti.Placeholder = "subreddit"
	ti.Prompt = "r/"
	ti.CharLimit = 24

	return Model{
		ctx:       ctx,
		feed:      f,
		updates:   updates,
		scroll:    feed.NewScrollSignal(f),
		open:      open,
		initial:   initial,
		keys:      defaultKeyMap(),
		spinner:   s,
		input:     ti,
		formatter: display.NewTerminalFormatter(),
		snap:      f.Snapshot(),
		height:    24,
	}
}

// Init subscribes to snapshots and starts the initial query, if any.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listen(), m.spinner.Tick}
	if !m.initial.IsZero() {
		cmds = append(cmds, m.submit(m.initial))
	}
	return tea.Batch(cmds...)
}

func (m Model) listen() tea.Cmd {
	ctx, updates := m.ctx, m.updates
	return func() tea.Msg {
		snap, ok := updates.Next(ctx)
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

func (m Model) submit(q reddit.Query) tea.Cmd {
	ctx, f := m.ctx, m.feed
	return func() tea.Msg {
		return actionDoneMsg{err: f.SubmitQuery(ctx, q)}
	}
}

func (m Model) changeCategory(c reddit.Category) tea.Cmd {
	ctx, f := m.ctx, m.feed
	return func() tea.Msg {
		return actionDoneMsg{err: f.ChangeCategory(ctx, c)}
	}
}

func (m Model) loadMore() tea.Cmd {
	ctx, f := m.ctx, m.feed
	return func() tea.Msg {
		return actionDoneMsg{err: f.LoadMore(ctx)}
	}
}

func (m Model) reload(q reddit.Query) tea.Cmd {
	ctx, f := m.ctx, m.feed
	return func() tea.Msg {
		f.Reset()
		return actionDoneMsg{err: f.SubmitQuery(ctx, q)}
	}
}

func (m Model) openURL(u string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return openedMsg{err: open(u)}
	}
}

// Update handles messages for the browser.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		return m.applySnapshot(msg.snap)

	case actionDoneMsg:
		// Feed errors are part of the snapshot; anything else is a usage notice.
		if msg.err != nil && reddit.KindOf(msg.err) == "" {
			m.notice = msg.err.Error()
		}
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.notice = "could not open link: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) applySnapshot(s feed.Snapshot) (tea.Model, tea.Cmd) {
	prev := m.snap
	m.snap = s

	if s.Query != prev.Query {
		m.cursor = 0
	}
	if len(s.Posts) != len(prev.Posts) {
		// New posts move the sentinel; allow another firing while visible.
		m.scroll.Rearm()
	}
	if m.cursor >= len(s.Posts) {
		m.cursor = max(len(s.Posts)-1, 0)
	}

	return m, tea.Batch(m.listen(), m.checkSentinel())
}

// sentinelVisible reports whether the end of the list is on screen.
func (m Model) sentinelVisible() bool {
	n := len(m.snap.Posts)
	return n > 0 && m.cursor >= n-prefetchTrigger
}

func (m Model) checkSentinel() tea.Cmd {
	if m.scroll.Update(m.sentinelVisible()) {
		return m.loadMore()
	}
	return nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, m.checkSentinel()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Posts)-1 {
			m.cursor++
		}
		return m, m.checkSentinel()

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		return m, m.checkSentinel()

	case key.Matches(msg, m.keys.Category):
		cats := reddit.Categories()
		idx := int(msg.Runes[0] - '1')
		if idx < 0 || idx >= len(cats) {
			return m, nil
		}
		return m.selectCategory(cats[idx])

	case key.Matches(msg, m.keys.NextCategory):
		return m.selectCategory(nextCategory(m.snap.Query.Category))

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Open):
		if p, ok := m.selected(); ok {
			if link := p.PermalinkURL(); link != "" {
				return m, m.openURL(link)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.OpenMedia):
		if p, ok := m.selected(); ok && p.PrimaryURL != "" {
			return m, m.openURL(p.PrimaryURL)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.snap.Query.IsZero() {
			return m, nil
		}
		return m, m.reload(m.snap.Query)
	}

	return m, nil
}

func (m Model) selectCategory(c reddit.Category) (tea.Model, tea.Cmd) {
	if m.snap.Query.IsZero() {
		m.notice = feed.ErrNoQuery.Error()
		return m, nil
	}
	return m, m.changeCategory(c)
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		category := string(m.snap.Query.Category)
		q, err := reddit.NewQuery(m.input.Value(), category)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.searching = false
		m.input.Blur()
		return m, m.submit(q)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) selected() (media.Post, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Posts) {
		return media.Post{}, false
	}
	return m.snap.Posts[m.cursor], true
}

func nextCategory(c reddit.Category) reddit.Category {
	cats := reddit.Categories()
	for i, cat := range cats {
		if cat == c {
			return cats[(i+1)%len(cats)]
		}
	}
	return cats[0]
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter load • esc cancel"))
		return b.String()
	}

	b.WriteString(m.listView())
	b.WriteString(m.statusView())
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) headerView() string {
	title := "redditview"
	if !m.snap.Query.IsZero() {
		title += "  r/" + m.snap.Query.Subreddit
	}

	tabs := make([]string, 0, len(reddit.Categories()))
	for i, c := range reddit.Categories() {
		label := fmt.Sprintf("%d %s", i+1, c)
		if c == m.snap.Query.Category && !m.snap.Query.IsZero() {
			tabs = append(tabs, activeCategoryStyle.Render(label))
		} else {
			tabs = append(tabs, categoryStyle.Render(label))
		}
	}

	return titleStyle.Render(title) + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) listView() string {
	posts := m.snap.Posts
	if len(posts) == 0 {
		if m.snap.Status == feed.StatusIdle {
			return metaStyle.Render("Press / to choose a subreddit.") + "\n"
		}
		return ""
	}

	visible := max((m.height-chromeLines)/itemLines, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(posts))

	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.itemView(posts[i], i == m.cursor, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) itemView(p media.Post, selected bool, width int) string {
	kind := kindStyle.Render(fmt.Sprintf("[%s]", strings.ToUpper(string(p.Kind))))
	title := m.formatter.TruncateText(p.Title, max(width-len(p.Kind)-8, 10))

	author := p.Author
	if author == "" {
		author = "[deleted]"
	}
	meta := fmt.Sprintf("u/%s • %s • ↑ %d • %d comments",
		author, m.formatter.FormatTimestamp(p.CreatedAt()), p.Score, p.NumComments)
	if n := len(p.DisplayURLs); n > 1 {
		meta += fmt.Sprintf(" • %d images", n)
	}

	body := kind + " " + title + "\n" + metaStyle.Render(meta)
	if selected {
		return selectedItemStyle.Render(body)
	}
	return itemStyle.Render(body)
}

func (m Model) statusView() string {
	if m.notice != "" {
		return "\n" + noticeStyle.Render(m.notice) + "\n"
	}

	switch m.snap.Status {
	case feed.StatusLoadingInitial:
		return "\n" + m.spinner.View() + " Loading " + m.snap.Query.String() + "...\n"
	case feed.StatusLoadingMore:
		return "\n" + m.spinner.View() + " Loading more...\n"
	case feed.StatusError:
		msg := strings.TrimSpace(m.formatter.FormatError(m.snap.Err))
		if reddit.KindOf(m.snap.Err).Soft() {
			return "\n" + noticeStyle.Render(msg) + "\n"
		}
		return "\n" + errorStyle.Render(msg) + "\n"
	case feed.StatusReady:
		if !m.snap.HasMore {
			return "\n" + metaStyle.Render("End of feed.") + "\n"
		}
	}
	return ""
}

func (m Model) helpView() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}
