package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"votd/internal/notice"
	"votd/internal/render"
	"votd/internal/schedule"
	"votd/internal/session"
	"votd/internal/settings"
	"votd/internal/share"
	"votd/internal/verse"
)

const (
	searchDelay     = 300 * time.Millisecond
	shuffleInterval = 500 * time.Millisecond
	shareTimeout    = 2 * time.Minute
	maxResults      = 10
)

// accentPresets is what the accent key cycles through.
var accentPresets = []string{"#0ea5e9", "#22c55e", "#f59e0b", "#ef4444", "#a855f7", "#ec4899"}

type mode int

const (
	modeVerse mode = iota
	modeSearch
	modeConfirmReset
)

type (
	noticeMsg        struct{ notice.Notice }
	noticeExpiredMsg struct{ seq int }
	searchQueryMsg   struct{ query string }
	rolloverMsg      struct{ at time.Time }
	shareDoneMsg     struct {
		n  notice.Notice
		ok bool
	}
)

// sender forwards messages from timer goroutines into the running program.
// Before the program starts (and in tests) messages are dropped.
type sender struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *sender) set(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *sender) Send(msg tea.Msg) {
	if s == nil {
		return
	}
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

type Model struct {
	ctl      *render.Controller
	catalog  *verse.Catalog
	settings *settings.Manager
	sess     *session.Session
	share    *share.Service
	logger   *slog.Logger
	now      func() time.Time
	shareURL string

	send     *sender
	debounce *schedule.Debouncer[string]
	throttle *schedule.Throttler

	view    render.View
	palette palette
	err     error

	width  int
	height int
	mode   mode

	search textinput.Model
	hits   render.Hits
	cursor int

	notice    *notice.Notice
	noticeSeq int

	keys       keyMap
	searchKeys searchKeyMap
	help       help.Model
}

func newModel(opts Options, send *sender) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "Search verses or references"
	in.CharLimit = 100

	m := Model{
		ctl:        render.New(opts.Catalog),
		catalog:    opts.Catalog,
		settings:   opts.Settings,
		sess:       opts.Session,
		share:      opts.Share,
		logger:     logger,
		now:        now,
		shareURL:   opts.ShareURL,
		send:       send,
		throttle:   schedule.NewThrottler(shuffleInterval),
		search:     in,
		keys:       defaultKeyMap(),
		searchKeys: defaultSearchKeyMap(),
		help:       help.New(),
		width:      80,
	}
	m.debounce = schedule.NewDebouncer(searchDelay, func(q string) {
		send.Send(searchQueryMsg{query: q})
	})
	if _, err := m.sess.Resume(now()); err != nil {
		logger.Warn("session resume", "err", err)
	}
	m.palette = newPalette(m.settings.Current())
	m.rerender()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.view.Notice != nil {
		return func() tea.Msg { return noticeMsg{*m.view.Notice} }
	}
	return nil
}

// rerender rebuilds the card from the current settings and shuffle offset.
func (m *Model) rerender() {
	v, err := m.ctl.Render(m.now(), m.settings.Current(), m.sess.Offset())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	if v.Fallback {
		m.logger.Error("render failed, showing fallback", "err", v.Err)
	}
	m.view = v
}

// flash shows n in the status line until it expires or another notice replaces it.
func (m *Model) flash(n notice.Notice) tea.Cmd {
	m.noticeSeq++
	m.notice = &n
	seq := m.noticeSeq
	d := n.Duration
	if d <= 0 {
		d = notice.DefaultDuration
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return noticeExpiredMsg{seq: seq} })
}

// withNotice returns m with n flashed, for returning straight from Update.
func (m Model) withNotice(n notice.Notice) (tea.Model, tea.Cmd) {
	cmd := m.flash(n)
	return m, cmd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(10, msg.Width-6)
		return m, nil

	case tea.FocusMsg:
		// Coming back to the terminal on a new day shows the new day's verse.
		rolled, err := m.sess.Resume(m.now())
		if err != nil {
			m.logger.Warn("session resume", "err", err)
		}
		if rolled {
			m.rerender()
		}
		return m, nil

	case rolloverMsg:
		m.rerender()
		return m.withNotice(notice.Success("New verse for today!").For(2 * time.Second))

	case noticeMsg:
		return m.withNotice(msg.Notice)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case shareDoneMsg:
		if !msg.ok {
			return m, nil
		}
		return m.withNotice(msg.n)

	case searchQueryMsg:
		if m.mode == modeSearch && msg.query == m.search.Value() {
			m.runSearch(msg.query)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirmReset:
			return m.updateConfirm(msg)
		default:
			return m.updateVerse(msg)
		}
	}
	return m, nil
}

func (m Model) updateVerse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.debounce.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCmd()

	case key.Matches(msg, m.keys.Share):
		return m, m.shareCmd()

	case key.Matches(msg, m.keys.Shuffle):
		if !m.throttle.Allow() {
			return m, nil
		}
		if _, err := m.sess.Shuffle(); err != nil {
			m.logger.Error("shuffle failed", "err", err)
			return m.withNotice(notice.Error("Shuffle failed"))
		}
		m.rerender()
		return m.withNotice(notice.Info("Showing different verse").For(time.Second))

	case key.Matches(msg, m.keys.Today):
		if err := m.sess.ClearOffset(); err != nil {
			return m.withNotice(notice.Error("Shuffle failed"))
		}
		m.rerender()
		return m.withNotice(notice.Info("Showing today's verse").For(time.Second))

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue("")
		m.hits = render.Hits{}
		m.cursor = 0
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Translation):
		return m.update(func(s *settings.Settings) { s.Translation = nextTranslation(s.Translation) })

	case key.Matches(msg, m.keys.Theme):
		return m.update(func(s *settings.Settings) { s.Theme = nextTheme(s.Theme) })

	case key.Matches(msg, m.keys.Accent):
		return m.update(func(s *settings.Settings) { s.Accent = nextAccent(s.Accent) })

	case key.Matches(msg, m.keys.Bigger):
		return m.update(func(s *settings.Settings) { s.FontSize++ })

	case key.Matches(msg, m.keys.Smaller):
		return m.update(func(s *settings.Settings) { s.FontSize-- })

	case key.Matches(msg, m.keys.RefFirst):
		return m.update(func(s *settings.Settings) { s.ShowRefFirst = !s.ShowRefFirst })

	case key.Matches(msg, m.keys.Reset):
		m.mode = modeConfirmReset
		return m, nil
	}
	return m, nil
}

// update saves one settings change. An out-of-range value is rejected and reported.
func (m Model) update(fn func(*settings.Settings)) (tea.Model, tea.Cmd) {
	before := m.settings.Current()
	saved, n, err := m.settings.Update(fn)
	if err != nil {
		return m.withNotice(n)
	}
	m.applySettings(before, saved)
	return m.withNotice(n)
}

func (m *Model) applySettings(before, after settings.Settings) {
	if before.Theme != after.Theme {
		applyThemePreference(after.Theme)
	}
	m.palette = newPalette(after)
	m.rerender()
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeVerse
	switch msg.String() {
	case "y", "Y", "enter":
		before := m.settings.Current()
		n := m.settings.Reset()
		m.applySettings(before, m.settings.Current())
		return m.withNotice(n)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.searchKeys.Cancel):
		m.closeSearch()
		return m, nil

	case key.Matches(msg, m.searchKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.searchKeys.Down):
		if m.cursor < len(m.visibleHits())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.searchKeys.Pick):
		// Enter before the debounce fires searches right away.
		if m.hits.Query != m.search.Value() {
			m.runSearch(m.search.Value())
		}
		hits := m.visibleHits()
		if len(hits) == 0 {
			return m, nil
		}
		return m.pick(hits[m.cursor])
	}

	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != prev {
		if strings.TrimSpace(q) == "" {
			m.debounce.Cancel()
			m.runSearch(q)
		} else {
			m.debounce.Trigger(q)
		}
	}
	return m, cmd
}

func (m *Model) runSearch(q string) {
	m.hits = m.ctl.Search(q, m.settings.Current().Translation)
	m.cursor = 0
}

func (m Model) visibleHits() []render.Hit {
	if len(m.hits.Results) > maxResults {
		return m.hits.Results[:maxResults]
	}
	return m.hits.Results
}

func (m *Model) closeSearch() {
	m.debounce.Cancel()
	m.mode = modeVerse
	m.search.Blur()
	m.search.SetValue("")
	m.hits = render.Hits{}
	m.cursor = 0
}

func (m Model) pick(h render.Hit) (tea.Model, tea.Cmd) {
	m.closeSearch()
	if _, err := m.sess.Select(m.now(), h.Index, m.ctl.Len()); err != nil {
		m.logger.Error("select failed", "ref", h.Ref, "err", err)
		return m.withNotice(notice.Error("Search failed"))
	}
	m.rerender()
	return m.withNotice(notice.Success("Showing " + h.Ref))
}

func (m Model) copyCmd() tea.Cmd {
	svc, v := m.share, m.view
	return func() tea.Msg {
		return noticeMsg{svc.Copy(v.Ref, v.Passage, v.Translation)}
	}
}

func (m Model) shareCmd() tea.Cmd {
	svc, v, url := m.share, m.view, m.shareURL
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
		defer cancel()
		n, ok := svc.Share(ctx, v.Ref, v.Passage, v.Translation, url)
		return shareDoneMsg{n: n, ok: ok}
	}
}

func nextTranslation(cur verse.Translation) verse.Translation {
	all := verse.Translations()
	for i, t := range all {
		if t == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func nextTheme(cur settings.ThemeMode) settings.ThemeMode {
	all := settings.Themes()
	for i, t := range all {
		if t == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func nextAccent(cur string) string {
	for i, a := range accentPresets {
		if strings.EqualFold(a, cur) {
			return accentPresets[(i+1)%len(accentPresets)]
		}
	}
	return accentPresets[0]
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("\n  %v\n\n  press q to quit\n", m.err)
	}
	width := max(20, m.width)
	p := m.palette

	var b strings.Builder
	b.WriteString(p.title.Render("Verse of the Day"))
	b.WriteString("  ")
	b.WriteString(p.date.Render(m.view.Today))
	b.WriteString("\n\n")

	cardWidth := width - p.card.GetHorizontalFrameSize()
	md := RenderMarkdown(cardMarkdown(m.view), cardWidth, markdownStyleName(), string(p.accent))
	b.WriteString(p.card.Width(max(10, width-2)).Render(md))
	b.WriteString("\n")
	if m.view.TomorrowRef != "" {
		b.WriteString(p.muted.Render("Tomorrow: " + m.view.TomorrowRef))
		b.WriteString("\n")
	}

	if m.mode == modeSearch {
		b.WriteString("\n")
		b.WriteString(m.searchView(width))
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine(width))
	b.WriteString("\n")
	if m.mode == modeSearch {
		b.WriteString(m.help.View(m.searchKeys))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// cardMarkdown is the card body without the date, which the header already shows.
func cardMarkdown(v render.View) string {
	cite := fmt.Sprintf("**%s** · %s", v.Ref, v.Translation)
	if v.ShowRefFirst {
		return cite + "\n\n> " + v.Passage
	}
	return "> " + v.Passage + "\n\n— " + cite
}

func (m Model) searchView(width int) string {
	p := m.palette
	var b strings.Builder
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(colorBorder).Render(strings.Repeat("─", max(1, width-2))))
	b.WriteString("\n")

	q := strings.TrimSpace(m.search.Value())
	switch {
	case q == "":
		b.WriteString(p.muted.Render("Type to search by reference or text."))
		b.WriteString("\n")
		return b.String()
	case m.hits.Query != m.search.Value():
		b.WriteString(p.muted.Render("Searching…"))
		b.WriteString("\n")
		return b.String()
	case m.hits.Empty():
		b.WriteString(p.input.Render("No verses found"))
		b.WriteString("\n")
		b.WriteString(p.muted.Render("Try searching with different keywords or check your spelling."))
		b.WriteString("\n")
		return b.String()
	}
	for i, h := range m.visibleHits() {
		line := ansi.Truncate(h.Ref+"  "+h.Passage, max(10, width-4), "…")
		if i == m.cursor {
			b.WriteString(p.selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if extra := len(m.hits.Results) - maxResults; extra > 0 {
		b.WriteString(p.muted.Render(fmt.Sprintf("  …and %d more", extra)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine(width int) string {
	if m.mode == modeConfirmReset {
		return m.palette.status(notice.KindInfo).Render("Reset all settings to defaults? (y/n)")
	}
	if m.notice == nil {
		return m.palette.muted.Render(m.settingsSummary())
	}
	return m.palette.status(m.notice.Kind).Render(ansi.Truncate(m.notice.Text, max(10, width), "…"))
}

func (m Model) settingsSummary() string {
	s := m.settings.Current()
	return fmt.Sprintf("%s · %s · %s · %dpx", s.Translation, s.Theme, s.Accent, s.FontSize)
}
