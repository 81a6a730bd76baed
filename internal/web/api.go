package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"votd/internal/daily"
	"votd/internal/logging"
	"votd/internal/notice"
	"votd/internal/settings"
	"votd/internal/verse"
)

const maxSettingsBody = 16 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// apiVerse renders the card. ?date=YYYY-MM-DD picks another day and ?offset
// overrides the session's shuffle; both default to the session's view of today.
func (s *Server) apiVerse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := s.now()
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		d, err := daily.ParseDate(raw, date.Location())
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}
	offset := sessionFrom(r).Offset()
	if raw := strings.TrimSpace(q.Get("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		offset = n
	}

	v, err := s.renderAt(r, date, offset)
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) apiSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t := s.searchTranslation(q.Get("translation"), s.settings.Current())
	writeJSON(w, http.StatusOK, s.search(q.Get("q"), t))
}

func (s *Server) apiSettingsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Current())
}

type settingsResponse struct {
	Settings settings.Settings `json:"settings"`
	Notice   notice.Notice     `json:"notice"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// apiSettingsPut merges the body over the current settings, so a partial document
// changes only the fields it names. Any invalid field rejects the whole update.
func (s *Server) apiSettingsPut(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSettingsBody))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	raw, err := settings.Decode(body, s.settings.Current().Raw())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "settings must be a JSON object")
		return
	}
	saved, n, err := s.settings.SaveRaw(raw)
	if err != nil {
		s.metrics.SettingsSaves.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, settingsResponse{
			Settings: s.settings.Current(),
			Notice:   n,
			Fields:   fieldErrors(err),
		})
		return
	}
	s.metrics.SettingsSaves.WithLabelValues(saveResult(n)).Inc()
	s.hub.broadcast(event{kind: eventSettings})
	writeJSON(w, http.StatusOK, settingsResponse{Settings: saved, Notice: n})
}

func (s *Server) apiSettingsReset(w http.ResponseWriter, r *http.Request) {
	n := s.settings.Reset()
	s.metrics.SettingsSaves.WithLabelValues("reset").Inc()
	s.hub.broadcast(event{kind: eventSettings})
	writeJSON(w, http.StatusOK, settingsResponse{Settings: s.settings.Current(), Notice: n})
}

type shuffleResponse struct {
	Offset int            `json:"shuffleOffset"`
	Ref    string         `json:"ref,omitempty"`
	Notice *notice.Notice `json:"notice,omitempty"`
}

func (s *Server) shuffleState(r *http.Request, n *notice.Notice) shuffleResponse {
	sess := sessionFrom(r)
	out := shuffleResponse{Offset: sess.Offset(), Notice: n}
	if v, err := s.ctl.Render(s.now(), s.settings.Current(), out.Offset); err == nil {
		out.Ref = v.Ref
	}
	return out
}

func (s *Server) apiShuffle(w http.ResponseWriter, r *http.Request) {
	s.metrics.Shuffles.Inc()
	if _, err := sessionFrom(r).Shuffle(); err != nil {
		logging.FromContext(r.Context()).Error("shuffle failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Shuffle failed")
		return
	}
	n := notice.Info("Showing different verse").For(time.Second)
	writeJSON(w, http.StatusOK, s.shuffleState(r, &n))
}

func (s *Server) apiShuffleReset(w http.ResponseWriter, r *http.Request) {
	if err := sessionFrom(r).ClearOffset(); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Shuffle failed")
		return
	}
	writeJSON(w, http.StatusOK, s.shuffleState(r, nil))
}

// apiShuffleSelect makes the referenced verse the one shown today.
func (s *Server) apiShuffleSelect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Ref string `json:"ref"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSettingsBody)).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "body must be {\"ref\": \"...\"}")
		return
	}
	ref := strings.TrimSpace(body.Ref)
	idx := s.catalog.IndexOf(ref)
	if idx < 0 {
		writeJSONError(w, http.StatusNotFound, "Verse not found")
		return
	}
	if _, err := sessionFrom(r).Select(s.now(), idx, s.catalog.Len()); err != nil {
		logging.FromContext(r.Context()).Error("select failed", "ref", ref, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	n := notice.Success("Showing " + ref)
	writeJSON(w, http.StatusOK, s.shuffleState(r, &n))
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.categories())
}

type categoryResponse struct {
	Name   string         `json:"name"`
	Verses []verse.Record `json:"verses"`
}

func (s *Server) apiCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "name")))
	recs := s.catalog.ByCategory(name)
	if len(recs) == 0 {
		writeJSONError(w, http.StatusNotFound, "unknown category: "+name)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{Name: name, Verses: recs})
}

type randomResponse struct {
	Ref         string            `json:"ref"`
	Passage     string            `json:"text"`
	Translation verse.Translation `json:"translation"`
}

func (s *Server) apiRandom(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.Random(nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, verse.ErrCatalogUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeJSONError(w, status, err.Error())
		return
	}
	t := s.settings.Current().Translation
	writeJSON(w, http.StatusOK, randomResponse{Ref: rec.Ref, Passage: rec.DisplayText(t), Translation: t})
}
