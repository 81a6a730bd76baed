package web

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"votd/internal/logging"
	"votd/internal/notice"
	"votd/internal/render"
	"votd/internal/settings"
	"votd/internal/verse"
)

type pageVM struct {
	Title    string
	Active   string
	Theme    settings.ThemeMode
	Accent   string
	FontSize int
	DateKey  string
	Notice   *notice.Notice
}

type categoryVM struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type indexVM struct {
	pageVM
	View              render.View
	Query             string
	SearchTranslation verse.Translation
	Search            *render.Hits
	Translations      []verse.Translation
	Categories        []categoryVM
}

type settingsVM struct {
	pageVM
	Settings     settings.Settings
	Translations []verse.Translation
	Themes       []settings.ThemeMode
	Errors       map[string]string
	MinFontSize  int
	MaxFontSize  int
}

func msDuration(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }

func isDatastar(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

func (s *Server) basePage(title, active string, cur settings.Settings) pageVM {
	return pageVM{
		Title:    title,
		Active:   active,
		Theme:    cur.Theme,
		Accent:   cur.Accent,
		FontSize: settings.ClampFontSize(cur.FontSize),
		DateKey:  s.now().Format(time.DateOnly),
	}
}

// renderFor renders today's card for the request's session.
func (s *Server) renderFor(r *http.Request, sess *reqSession) (render.View, error) {
	offset := 0
	if sess != nil {
		offset = sess.Offset()
	}
	return s.renderAt(r, s.now(), offset)
}

func (s *Server) renderAt(r *http.Request, date time.Time, offset int) (render.View, error) {
	cur := s.settings.Current()
	v, err := s.ctl.Render(date, cur, offset)
	if err != nil {
		s.metrics.VerseRenders.WithLabelValues(string(cur.Translation), "error").Inc()
		return v, err
	}
	outcome := "ok"
	if v.Fallback {
		outcome = "fallback"
		logging.FromContext(r.Context()).Error("render failed, showing fallback", "err", v.Err)
	}
	s.metrics.VerseRenders.WithLabelValues(string(v.Translation), outcome).Inc()
	return v, nil
}

func (s *Server) categories() []categoryVM {
	names := s.catalog.Categories()
	out := make([]categoryVM, 0, len(names))
	for _, n := range names {
		out = append(out, categoryVM{Name: n, Count: len(s.catalog.ByCategory(n))})
	}
	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	cur := s.settings.Current()
	view, err := s.renderFor(r, sess)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	vm := indexVM{
		pageVM:            s.basePage("Verse of the Day", "home", cur),
		View:              view,
		SearchTranslation: s.searchTranslation(r.URL.Query().Get("translation"), cur),
		Translations:      verse.Translations(),
		Categories:        s.categories(),
	}
	vm.Notice = sess.takeFlash()
	if vm.Notice == nil {
		vm.Notice = view.Notice
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		vm.Query = q
		hits := s.search(q, vm.SearchTranslation)
		vm.Search = &hits
	}
	s.writeHTMLTemplate(w, r, http.StatusOK, "index.html", vm)
}

func (s *Server) searchTranslation(raw string, cur settings.Settings) verse.Translation {
	if settings.ValidTranslation(raw) {
		return verse.Translation(raw)
	}
	return cur.Translation
}

func (s *Server) search(q string, t verse.Translation) render.Hits {
	s.metrics.Searches.Inc()
	return s.ctl.Search(q, t)
}

type searchSignals struct {
	Query             string `json:"query"`
	SearchTranslation string `json:"searchTranslation"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	cur := s.settings.Current()
	if !isDatastar(r) {
		q := url.Values{}
		q.Set("q", r.URL.Query().Get("q"))
		q.Set("translation", string(s.searchTranslation(r.URL.Query().Get("translation"), cur)))
		http.Redirect(w, r, "/?"+q.Encode()+"#search", http.StatusSeeOther)
		return
	}

	var sig searchSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	hits := s.search(sig.Query, s.searchTranslation(sig.SearchTranslation, cur))
	html, err := s.renderTemplate("search_results", &hits)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		logging.FromContext(r.Context()).Error("search failed", "err", err)
		s.patchToast(sse, notice.Error("Search failed"))
		return
	}
	_ = sse.PatchElements(html, datastar.WithSelector("#search-results"), datastar.WithMode(datastar.ElementPatchModeInner))
}

// respond finishes a page action: datastar requests get the card and toast patched
// in place, plain form posts are redirected with the notice flashed.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, n notice.Notice, redirect string, extra func(*datastar.ServerSentEventGenerator)) {
	sess := sessionFrom(r)
	if !isDatastar(r) {
		sess.setFlash(n)
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	sse := datastar.NewSSE(w, r)
	if redirect == "/" {
		if view, err := s.renderFor(r, sess); err == nil {
			if card, err := s.renderTemplate("verse_card", view); err == nil {
				_ = sse.PatchElements(card, datastar.WithSelector("#verse-card"), datastar.WithMode(datastar.ElementPatchModeOuter))
			}
		}
	}
	if extra != nil {
		extra(sse)
	}
	s.patchToast(sse, n)
}

func (s *Server) patchToast(sse *datastar.ServerSentEventGenerator, n notice.Notice) {
	html, err := s.renderTemplate("toast", &n)
	if err != nil {
		return
	}
	_ = sse.PatchElements(html, datastar.WithSelector("#toasts"), datastar.WithMode(datastar.ElementPatchModeInner))
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	s.metrics.Shuffles.Inc()
	if _, err := sessionFrom(r).Shuffle(); err != nil {
		logging.FromContext(r.Context()).Error("shuffle failed", "err", err)
		s.respond(w, r, notice.Error("Shuffle failed"), "/", nil)
		return
	}
	s.respond(w, r, notice.Info("Showing different verse").For(time.Second), "/", nil)
}

func (s *Server) handleShuffleReset(w http.ResponseWriter, r *http.Request) {
	if err := sessionFrom(r).ClearOffset(); err != nil {
		s.respond(w, r, notice.Error("Shuffle failed"), "/", nil)
		return
	}
	s.respond(w, r, notice.Info("Showing today's verse").For(time.Second), "/", nil)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.FormValue("ref"))
	idx := s.catalog.IndexOf(ref)
	if idx < 0 {
		s.respond(w, r, notice.Error("Verse not found"), "/", nil)
		return
	}
	if _, err := sessionFrom(r).Select(s.now(), idx, s.catalog.Len()); err != nil {
		logging.FromContext(r.Context()).Error("select failed", "ref", ref, "err", err)
		s.respond(w, r, notice.Error("Search failed"), "/", nil)
		return
	}
	s.respond(w, r, notice.Success(fmt.Sprintf("Showing %s", ref)), "/", func(sse *datastar.ServerSentEventGenerator) {
		_ = sse.MarshalAndPatchSignals(map[string]any{"searchOpen": false, "query": ""})
		_ = sse.PatchElements(`<div id="search-results"></div>`, datastar.WithSelector("#search-results"), datastar.WithMode(datastar.ElementPatchModeOuter))
	})
}

func (s *Server) settingsPage(cur settings.Settings, errs map[string]string) settingsVM {
	return settingsVM{
		pageVM:       s.basePage("Settings", "settings", cur),
		Settings:     cur,
		Translations: verse.Translations(),
		Themes:       settings.Themes(),
		Errors:       errs,
		MinFontSize:  settings.MinFontSize,
		MaxFontSize:  settings.MaxFontSize,
	}
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	vm := s.settingsPage(s.settings.Current(), nil)
	vm.Notice = sessionFrom(r).takeFlash()
	s.writeHTMLTemplate(w, r, http.StatusOK, "settings.html", vm)
}

func formRaw(r *http.Request) settings.Raw {
	on := strings.ToLower(strings.TrimSpace(r.FormValue("showRefFirst")))
	return settings.FromInput(
		r.FormValue("translation"),
		r.FormValue("theme"),
		r.FormValue("accent"),
		r.FormValue("fontSize"),
		on == "on" || on == "true" || on == "1",
	)
}

func (s *Server) handleSettingsPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	raw := formRaw(r)
	saved, n, err := s.settings.SaveRaw(raw)
	if err != nil {
		s.metrics.SettingsSaves.WithLabelValues("invalid").Inc()
		if isDatastar(r) {
			s.patchToast(datastar.NewSSE(w, r), n)
			return
		}
		// The form shows the stored values again with the rejected fields flagged.
		vm := s.settingsPage(s.settings.Current(), fieldErrors(err))
		vm.Notice = &n
		s.writeHTMLTemplate(w, r, http.StatusUnprocessableEntity, "settings.html", vm)
		return
	}
	s.metrics.SettingsSaves.WithLabelValues(saveResult(n)).Inc()
	s.hub.broadcast(event{kind: eventSettings})
	s.respond(w, r, n, "/settings", func(sse *datastar.ServerSentEventGenerator) {
		_ = sse.MarshalAndPatchSignals(map[string]any{
			"theme":    saved.Theme,
			"accent":   saved.Accent,
			"fontSize": saved.FontSize,
		})
	})
}

func (s *Server) handleSettingsReset(w http.ResponseWriter, r *http.Request) {
	n := s.settings.Reset()
	s.metrics.SettingsSaves.WithLabelValues("reset").Inc()
	s.hub.broadcast(event{kind: eventSettings})
	s.respond(w, r, n, "/settings", func(sse *datastar.ServerSentEventGenerator) {
		vm := s.settingsPage(s.settings.Current(), nil)
		if html, err := s.renderTemplate("settings_form", vm); err == nil {
			_ = sse.PatchElements(html, datastar.WithSelector("#settings-form"), datastar.WithMode(datastar.ElementPatchModeOuter))
		}
	})
}

func saveResult(n notice.Notice) string {
	if n.Kind == notice.KindError {
		return "storage_error"
	}
	return "ok"
}

func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(*settings.ValidationError); ok {
		for _, f := range ve.Fields {
			out[f.Field] = f.Message()
		}
	}
	return out
}

// cardStyle and pageStyle set CSS variables from validated settings only.
func cardStyle(v render.View) template.CSS {
	return pageStyle(v.FontSize, v.Accent)
}

func pageStyle(fontSize int, accent string) template.CSS {
	return template.CSS(fmt.Sprintf("--verse-font-size: %dpx; --accent: %s;", fontSize, accent))
}
