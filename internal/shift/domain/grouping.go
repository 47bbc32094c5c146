package domain

import (
	"fmt"
	"sort"
	"time"
)

// Группировка смен в отчетах
const (
	GroupByNone = "none"
	GroupByDay  = "day"
	GroupByWeek = "week"
)

// IsValidGroupBy проверяет значение параметра groupBy
func IsValidGroupBy(g string) bool {
	switch g {
	case GroupByNone, GroupByDay, GroupByWeek:
		return true
	default:
		return false
	}
}

// WeekRange: понедельник и воскресенье недели, в которую попадает t
func WeekRange(t time.Time) (time.Time, time.Time) {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	start := t.AddDate(0, 0, -offset+1)
	return start, start.AddDate(0, 0, 6)
}

// GroupKey: ключ группы, сортируемый лексикографически
func GroupKey(t time.Time, groupBy string) string {
	switch groupBy {
	case GroupByDay:
		return t.Format("2006-01-02")
	case GroupByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return ""
	}
}

// GroupTitle: заголовок группы для отчета
func GroupTitle(t time.Time, groupBy string) string {
	switch groupBy {
	case GroupByDay:
		return t.Format("Monday, 02 Jan 2006")
	case GroupByWeek:
		start, end := WeekRange(t)
		return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	default:
		return ""
	}
}

// ShiftGroup: смены одной группы
type ShiftGroup struct {
	Key    string
	Title  string
	Shifts []*Shift
}

// GroupShifts раскладывает смены по дням или неделям clock-in; группы идут от новых к старым.
// Порядок смен внутри группы сохраняется.
func GroupShifts(shifts []*Shift, groupBy string) []ShiftGroup {
	if groupBy == GroupByNone || groupBy == "" {
		return []ShiftGroup{{Shifts: shifts}}
	}

	index := make(map[string]int)
	var groups []ShiftGroup
	for _, s := range shifts {
		key := GroupKey(s.ClockInTime, groupBy)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ShiftGroup{Key: key, Title: GroupTitle(s.ClockInTime, groupBy)})
		}
		groups[i].Shifts = append(groups[i].Shifts, s)
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Key > groups[b].Key })
	return groups
}
