package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"votd/internal/notice"
	"votd/internal/store"
)

// Store reads and writes the settings record in a key-value backend.
type Store struct {
	kv store.KV
}

func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Load merges the stored record over the defaults. Missing, unreadable or malformed
// records yield the defaults; a field of the wrong JSON type is marked invalid so that
// Normalize replaces it. Load itself never fails.
func (s *Store) Load() Raw {
	r, _ := s.load()
	return r
}

// load is Load plus the reason a stored record was ignored.
func (s *Store) load() (Raw, error) {
	out := RawDefaults()
	v, ok, err := s.kv.GetItem(Key)
	if err != nil {
		return out, err
	}
	if !ok || v == "" {
		return out, nil
	}
	out, err = Decode([]byte(v), out)
	if err != nil {
		return RawDefaults(), fmt.Errorf("decode %s: %w", Key, err)
	}
	return out, nil
}

// Decode merges the JSON object b over base, field by field. Unknown keys are
// ignored; a known key of the wrong JSON type is marked invalid.
func Decode(b []byte, base Raw) (Raw, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return base, err
	}
	out := base
	out.badType = nil
	for k, v := range base.badType {
		if out.badType == nil {
			out.badType = map[string]bool{}
		}
		out.badType[k] = v
	}
	mergeField(fields, "translation", &out.Translation, &out)
	mergeField(fields, "theme", &out.Theme, &out)
	mergeField(fields, "accent", &out.Accent, &out)
	mergeField(fields, "fontSize", &out.FontSize, &out)
	mergeField(fields, "showRefFirst", &out.ShowRefFirst, &out)
	return out, nil
}

func mergeField[T any](fields map[string]json.RawMessage, name string, dst *T, r *Raw) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		if r.badType == nil {
			r.badType = map[string]bool{}
		}
		r.badType[name] = true
		return
	}
	if string(raw) == "null" {
		return
	}
	delete(r.badType, name)
	*dst = v
}

// Save persists the full record.
func (s *Store) Save(v Settings) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.SetItem(Key, string(b))
}

// Manager is the single source of the current settings for a running surface. It
// keeps the in-memory value authoritative when persistence fails.
type Manager struct {
	store  *Store
	logger *slog.Logger

	mu      sync.RWMutex
	current Settings
	loaded  bool
}

func NewManager(st *Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: st, logger: logger}
}

// Current returns the effective settings, loading them on first use.
func (m *Manager) Current() Settings {
	m.mu.RLock()
	if m.loaded {
		cur := m.current
		m.mu.RUnlock()
		return cur
	}
	m.mu.RUnlock()
	cur, _ := m.Reload()
	return cur
}

// Reload re-reads storage, replacing every invalid field with its default.
func (m *Manager) Reload() (Settings, []FieldError) {
	raw, err := m.store.load()
	if err != nil {
		m.logger.Warn("settings unreadable, using defaults", "err", err)
	}
	cur, bad := Normalize(raw)
	for _, fe := range bad {
		m.logger.Warn("invalid setting replaced with default", "field", fe.Field, "value", fe.Value)
	}
	m.mu.Lock()
	m.current = cur
	m.loaded = true
	m.mu.Unlock()
	return cur, bad
}

// Save validates v as a whole and, if valid, makes it current and persists it. A
// rejected record changes nothing and returns the validation error together with a
// notice for its first invalid field. Persistence failure is not an error: the new
// value stays current in memory and the returned notice reports the failure.
func (m *Manager) Save(v Settings) (notice.Notice, error) {
	if err := Validate(v); err != nil {
		return invalidNotice(err), err
	}
	return m.commit(v, "Settings saved successfully!"), nil
}

// SaveRaw is Save for unvalidated input such as a submitted form.
func (m *Manager) SaveRaw(r Raw) (Settings, notice.Notice, error) {
	v, err := Strict(r)
	if err != nil {
		return m.Current(), invalidNotice(err), err
	}
	return v, m.commit(v, "Settings saved successfully!"), nil
}

// Update applies fn to a copy of the current settings and saves the result.
func (m *Manager) Update(fn func(*Settings)) (Settings, notice.Notice, error) {
	v := m.Current()
	fn(&v)
	n, err := m.Save(v)
	if err != nil {
		return m.Current(), n, err
	}
	return v, n, nil
}

// Reset restores and persists the defaults.
func (m *Manager) Reset() notice.Notice {
	return m.commit(Defaults(), "Settings reset to defaults")
}

func (m *Manager) commit(v Settings, okText string) notice.Notice {
	m.mu.Lock()
	m.current = v
	m.loaded = true
	m.mu.Unlock()

	if err := m.store.Save(v); err != nil {
		m.logger.Error("persist settings", "err", err)
		return notice.Error("Failed to save settings")
	}
	return notice.Success(okText)
}

func invalidNotice(err error) notice.Notice {
	if ve, ok := err.(*ValidationError); ok && len(ve.Fields) > 0 {
		return notice.Error(ve.Fields[0].Message())
	}
	return notice.Error("Invalid settings")
}
