package dashboard

import (
	"fmt"
	"time"

	"github.com/petroflow/petroflow/internal/platform/httpx"
)

// Periods accepted by the stats endpoint.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Span returns the elapsed duration of the window.
func (w Window) Span() time.Duration {
	return w.To.Sub(w.From)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Windows returns the current window for the period ending at now, and the
// previous window covering the same elapsed span one period earlier. Comparing
// partial-to-partial keeps percentage changes honest mid-period.
func Windows(period string, now time.Time) (current, previous Window, err error) {
	switch period {
	case PeriodDay:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		current = Window{From: start, To: now}
		prevStart := start.AddDate(0, 0, -1)
		previous = Window{From: prevStart, To: prevStart.Add(current.Span())}
	case PeriodWeek:
		start := startOfWeek(now)
		current = Window{From: start, To: now}
		prevStart := start.AddDate(0, 0, -7)
		previous = Window{From: prevStart, To: prevStart.Add(current.Span())}
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		current = Window{From: start, To: now}
		prevStart := start.AddDate(0, -1, 0)
		previous = Window{From: prevStart, To: prevStart.Add(current.Span())}
	default:
		return Window{}, Window{}, fmt.Errorf("%w: unknown period %q", httpx.ErrValidation, period)
	}
	return current, previous, nil
}

// startOfWeek returns Monday 00:00 of the week containing t.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
