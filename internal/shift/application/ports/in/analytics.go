package in

import (
	"context"
	"time"
)

// StaffWeeklyStats: показатели сотрудника за окно
type StaffWeeklyStats struct {
	UserID          string  `json:"userId"`
	Username        string  `json:"username"`
	TotalHours      float64 `json:"totalHours"`
	TotalShifts     int     `json:"totalShifts"`
	CompletedShifts int     `json:"completedShifts"`
	IsActive        bool    `json:"isActive"`
}

// DailyStats: показатели одного дня
type DailyStats struct {
	Date       string  `json:"date"`
	ClockIns   int     `json:"clockIns"`
	TotalHours float64 `json:"totalHours"`
}

// WeeklyOverview: сводка для менеджера за последние 7 дней
type WeeklyOverview struct {
	WindowStart      time.Time          `json:"windowStart"`
	WindowEnd        time.Time          `json:"windowEnd"`
	AvgHoursPerDay   float64            `json:"avgHoursPerDay"`
	PeoplePerDay     float64            `json:"peoplePerDay"`
	TotalActiveStaff int                `json:"totalActiveStaff"`
	Staff            []StaffWeeklyStats `json:"staff"`
	Daily            []DailyStats       `json:"daily"`
}

// AnalyticsUseCase: агрегаты по сменам
type AnalyticsUseCase interface {
	WeeklyOverview(ctx context.Context) (*WeeklyOverview, error)
}
