package models

import (
	"errors"
	"sort"
	"time"
)

// ErrNoData is returned by data sources when a symbol has no usable history.
var ErrNoData = errors.New("no data")

// Bar is one daily OHLCV record.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ascending, duplicate-free run of bars for one symbol plus the
// numeric channels derived from it. Channels are aligned index-for-index with
// Bars and belong to this series only.
type Series struct {
	Symbol   string
	Bars     []Bar
	channels map[string][]float64
}

// NewSeries copies bars, orders them by date and drops duplicate dates,
// keeping the last occurrence.
func NewSeries(symbol string, bars []Bar) *Series {
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })

	out := cp[:0]
	for _, b := range cp {
		if n := len(out); n > 0 && sameDay(out[n-1].Date, b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return &Series{Symbol: symbol, Bars: out, channels: make(map[string][]float64)}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

func (s *Series) Empty() bool { return s.Len() == 0 }

// Last returns the last closed bar. Callers must check Empty first.
func (s *Series) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Head returns a new series holding the first n bars without channels.
func (s *Series) Head(n int) *Series {
	if n > len(s.Bars) {
		n = len(s.Bars)
	}
	return &Series{Symbol: s.Symbol, Bars: s.Bars[:n:n], channels: make(map[string][]float64)}
}

// Tail returns a new series holding the last n bars without channels.
func (s *Series) Tail(n int) *Series {
	if n > len(s.Bars) {
		n = len(s.Bars)
	}
	return &Series{Symbol: s.Symbol, Bars: s.Bars[len(s.Bars)-n:], channels: make(map[string][]float64)}
}

// Clone deep-copies bars and channels.
func (s *Series) Clone() *Series {
	c := NewSeries(s.Symbol, s.Bars)
	for k, v := range s.channels {
		cp := make([]float64, len(v))
		copy(cp, v)
		c.channels[k] = cp
	}
	return c
}

func (s *Series) Closes() []float64 { return s.column(func(b Bar) float64 { return b.Close }) }
func (s *Series) Opens() []float64 { return s.column(func(b Bar) float64 { return b.Open }) }
func (s *Series) Highs() []float64 { return s.column(func(b Bar) float64 { return b.High }) }
func (s *Series) Lows() []float64 { return s.column(func(b Bar) float64 { return b.Low }) }
func (s *Series) Volumes() []float64 { return s.column(func(b Bar) float64 { return b.Volume }) }

func (s *Series) column(f func(Bar) float64) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = f(b)
	}
	return out
}

// Channel returns a derived channel by name.
func (s *Series) Channel(name string) ([]float64, bool) {
	v, ok := s.channels[name]
	return v, ok
}

// HasChannel reports whether name was already computed.
func (s *Series) HasChannel(name string) bool {
	_, ok := s.channels[name]
	return ok
}

// SetChannel stores values under name. Channels are append-only: an existing
// channel is never replaced, and a length mismatch is rejected.
func (s *Series) SetChannel(name string, values []float64) bool {
	if s.channels == nil {
		s.channels = make(map[string][]float64)
	}
	if _, ok := s.channels[name]; ok || len(values) != len(s.Bars) {
		return false
	}
	s.channels[name] = values
	return true
}

// ChannelNames lists computed channels in no particular order.
func (s *Series) ChannelNames() []string {
	names := make([]string, 0, len(s.channels))
	for k := range s.channels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LastValue returns the last value of a channel, or false when the channel is
// missing or the series is empty.
func (s *Series) LastValue(name string) (float64, bool) {
	v, ok := s.channels[name]
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[len(v)-1], true
}
