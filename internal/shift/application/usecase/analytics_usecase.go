package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"shifttrack/internal/shared/logger"
	in "shifttrack/internal/shift/application/ports/in"
	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"
)

const analyticsWindowDays = 7

// AnalyticsService реализует AnalyticsUseCase
type AnalyticsService struct {
	shifts  out.ShiftRepository
	staff   out.StaffDirectory
	log     *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

var _ in.AnalyticsUseCase = (*AnalyticsService)(nil)

func NewAnalyticsService(shifts out.ShiftRepository, staff out.StaffDirectory, log *logger.Logger, timeout time.Duration, now func() time.Time) *AnalyticsService {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{shifts: shifts, staff: staff, log: log, timeout: timeout, now: now}
}

// WeeklyOverview считает показатели за последние 7 дней.
// Часы учитываются только по закрытым сменам; активные сотрудники считаются по всем открытым сменам.
func (s *AnalyticsService) WeeklyOverview(ctx context.Context) (*in.WeeklyOverview, error) {
	now := s.now().UTC()
	windowStart := now.AddDate(0, 0, -analyticsWindowDays)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	weekly, err := s.shifts.ListShiftsBetween(ctx, windowStart, time.Time{}, "")
	if err != nil {
		return nil, fmt.Errorf("weekly shifts: %w: %w", domain.ErrPersistenceUnavailable, err)
	}
	open, err := s.shifts.ListOpenShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("open shifts: %w: %w", domain.ErrPersistenceUnavailable, err)
	}

	var members []out.StaffMember
	if s.staff != nil {
		members, err = s.staff.ListStaff(ctx)
		if err != nil {
			return nil, fmt.Errorf("list staff: %w: %w", domain.ErrPersistenceUnavailable, err)
		}
	}

	var totalHours float64
	for _, sh := range weekly {
		if !sh.IsOpen() {
			totalHours += sh.Duration(now).Hours()
		}
	}

	overview := &in.WeeklyOverview{
		WindowStart:      windowStart,
		WindowEnd:        now,
		AvgHoursPerDay:   round1(totalHours / analyticsWindowDays),
		PeoplePerDay:     round1(float64(len(weekly)) / analyticsWindowDays),
		TotalActiveStaff: len(open),
		Staff:            staffStats(members, weekly, open, now),
		Daily:            dailyStats(weekly, now),
	}

	s.log.Debug(logger.Entry{
		Action:  "weekly_overview_computed",
		Message: "analytics computed",
		Additional: map[string]any{
			"shifts": len(weekly),
			"open":   len(open),
		},
	})

	return overview, nil
}

func staffStats(members []out.StaffMember, weekly, open []*domain.Shift, now time.Time) []in.StaffWeeklyStats {
	active := make(map[string]bool, len(open))
	for _, sh := range open {
		active[sh.UserID] = true
	}

	index := make(map[string]int)
	stats := make([]in.StaffWeeklyStats, 0, len(members))
	add := func(userID, username string) int {
		if i, ok := index[userID]; ok {
			return i
		}
		index[userID] = len(stats)
		stats = append(stats, in.StaffWeeklyStats{UserID: userID, Username: username, IsActive: active[userID]})
		return len(stats) - 1
	}

	for _, m := range members {
		add(m.UserID, m.Username)
	}
	// смены пользователей, которых нет в справочнике, тоже учитываются
	for _, sh := range weekly {
		i := add(sh.UserID, sh.Username)
		stats[i].TotalShifts++
		if !sh.IsOpen() {
			stats[i].CompletedShifts++
			stats[i].TotalHours += sh.Duration(now).Hours()
		}
	}

	for i := range stats {
		stats[i].TotalHours = round1(stats[i].TotalHours)
	}
	sort.SliceStable(stats, func(a, b int) bool { return stats[a].TotalHours > stats[b].TotalHours })
	return stats
}

// dailyStats: 7 календарных дней (UTC), от самого старого к сегодняшнему
func dailyStats(weekly []*domain.Shift, now time.Time) []in.DailyStats {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := make([]in.DailyStats, analyticsWindowDays)
	hours := make([]float64, analyticsWindowDays)

	for i := range days {
		day := today.AddDate(0, 0, i-(analyticsWindowDays-1))
		days[i].Date = day.Format("Mon, Jan 2")
	}

	for _, sh := range weekly {
		ci := sh.ClockInTime.UTC()
		day := time.Date(ci.Year(), ci.Month(), ci.Day(), 0, 0, 0, 0, time.UTC)
		offset := int(today.Sub(day).Hours() / 24)
		if offset < 0 || offset >= analyticsWindowDays {
			continue
		}
		i := analyticsWindowDays - 1 - offset
		days[i].ClockIns++
		if !sh.IsOpen() {
			hours[i] += sh.Duration(now).Hours()
		}
	}

	for i := range days {
		days[i].TotalHours = round1(hours[i])
	}
	return days
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
