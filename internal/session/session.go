// Package session holds per-session view state: the shuffle offset and the calendar
// day the session last refreshed on. Nothing here is part of the persisted profile.
package session

import (
	"strconv"
	"strings"
	"time"

	"votd/internal/daily"
	"votd/internal/store"
)

const (
	OffsetKey      = "votd.shuffleOffset"
	LastRefreshKey = "votd.lastRefresh"
)

type Session struct {
	kv store.KV
}

func New(kv store.KV) *Session {
	return &Session{kv: kv}
}

// Offset returns the shuffle offset; absent, unreadable or unparsable values are 0.
func (s *Session) Offset() int {
	v, ok, err := s.kv.GetItem(OffsetKey)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

func (s *Session) SetOffset(n int) error {
	return s.kv.SetItem(OffsetKey, strconv.Itoa(n))
}

// Shuffle advances the offset by one and returns the new value.
func (s *Session) Shuffle() (int, error) {
	n := s.Offset() + 1
	return n, s.SetOffset(n)
}

// ClearOffset returns the session to the date's own verse.
func (s *Session) ClearOffset() error {
	return s.kv.RemoveItem(OffsetKey)
}

// Select sets the offset so that the catalog entry at target is the one shown on
// now's date.
func (s *Session) Select(now time.Time, target, length int) (int, error) {
	base, err := daily.IdxForDate(now, length)
	if err != nil {
		return 0, err
	}
	off := daily.OffsetFor(target, base, length)
	return off, s.SetOffset(off)
}

// Resume records that the session is active on now's date. When the session last
// refreshed on an earlier day the shuffle offset is cleared and rolled is true.
func (s *Session) Resume(now time.Time) (rolled bool, err error) {
	today := daily.DateKey(now)
	prev, ok, err := s.kv.GetItem(LastRefreshKey)
	if err != nil {
		return false, err
	}
	if ok && prev == today {
		return false, nil
	}
	if ok {
		if err := s.ClearOffset(); err != nil {
			return false, err
		}
		rolled = true
	}
	return rolled, s.kv.SetItem(LastRefreshKey, today)
}

// Rollover clears the offset and stamps the new day, as done at local midnight.
func (s *Session) Rollover(now time.Time) error {
	if err := s.ClearOffset(); err != nil {
		return err
	}
	return s.kv.SetItem(LastRefreshKey, daily.DateKey(now))
}
