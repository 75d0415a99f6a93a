// Package schedule maps the hour of the day to the strategy and channel
// that should run in it.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/artcava/XPoster/internal/config"
	"github.com/artcava/XPoster/internal/domain"
)

const hoursPerDay = 24

var (
	// ErrHourOutOfRange is returned for slots outside 0-23.
	ErrHourOutOfRange = errors.New("hour out of range")
	// ErrDuplicateHour is returned when two slots claim the same hour.
	ErrDuplicateHour = errors.New("duplicate hour")
)

// Slot binds one hour to a strategy and a channel.
type Slot struct {
	Hour     int
	Strategy domain.StrategyKind
	Channel  domain.Channel
}

// Table is an immutable hour -> (strategy, channel) mapping. Hours that are
// not mapped resolve to NoSend.
type Table struct {
	slots  []Slot
	byHour map[int]Slot
}

// NewTable builds a table from an ordered list of slots.
func NewTable(slots []Slot) (*Table, error) {
	t := &Table{
		slots:  make([]Slot, 0, len(slots)),
		byHour: make(map[int]Slot, len(slots)),
	}

	for _, s := range slots {
		if s.Hour < 0 || s.Hour >= hoursPerDay {
			return nil, fmt.Errorf("%w: %d", ErrHourOutOfRange, s.Hour)
		}
		if _, dup := t.byHour[s.Hour]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateHour, s.Hour)
		}
		t.byHour[s.Hour] = s
		t.slots = append(t.slots, s)
	}

	return t, nil
}

// FromConfig parses the configured slot list.
func FromConfig(entries []config.SlotConfig) (*Table, error) {
	slots := make([]Slot, 0, len(entries))

	for i, e := range entries {
		kind, err := domain.ParseStrategy(e.Strategy)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		ch, err := domain.ParseChannel(e.Channel)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		slots = append(slots, Slot{Hour: e.Hour, Strategy: kind, Channel: ch})
	}

	return NewTable(slots)
}

// Lookup returns the strategy and channel for an hour.
func (t *Table) Lookup(hour int) (domain.StrategyKind, domain.Channel) {
	s, ok := t.byHour[hour]
	if !ok {
		return domain.NoSend, domain.ChannelNone
	}
	return s.Strategy, s.Channel
}

// Day returns the resolved slot for each of the 24 hours, in hour order.
func (t *Table) Day() []Slot {
	day := make([]Slot, 0, hoursPerDay)
	for h := range hoursPerDay {
		kind, ch := t.Lookup(h)
		day = append(day, Slot{Hour: h, Strategy: kind, Channel: ch})
	}
	return day
}

// Slots returns the configured slots sorted by hour.
func (t *Table) Slots() []Slot {
	out := append([]Slot(nil), t.slots...)
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Selector resolves the current slot from a table and a clock.
type Selector struct {
	table    *Table
	location *time.Location
}

// NewSelector evaluates hours in loc; a nil loc means UTC.
func NewSelector(table *Table, loc *time.Location) *Selector {
	if loc == nil {
		loc = time.UTC
	}
	return &Selector{table: table, location: loc}
}

// Select is a pure function of now.
func (s *Selector) Select(now time.Time) (domain.StrategyKind, domain.Channel) {
	return s.table.Lookup(now.In(s.location).Hour())
}
