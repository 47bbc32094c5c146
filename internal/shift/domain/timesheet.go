package domain

import "time"

// Timesheet: данные табеля для отрисовки.
// Открытые смены считаются до GeneratedAt.
type Timesheet struct {
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
	GroupBy     string
	Groups      []ShiftGroup
}

// Total: суммарная длительность всех смен табеля
func (t Timesheet) Total() time.Duration {
	var total time.Duration
	for _, g := range t.Groups {
		total += g.Total(t.GeneratedAt)
	}
	return total
}

// Total: длительность смен группы
func (g ShiftGroup) Total(now time.Time) time.Duration {
	var total time.Duration
	for _, s := range g.Shifts {
		total += s.Duration(now)
	}
	return total
}
