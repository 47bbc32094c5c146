package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"shifttrack/internal/geofence"
)

// Location: координаты отметки
type Location = geofence.Point

// Shift: одна рабочая смена пользователя.
// ClockOutTime == nil означает, что смена открыта.
type Shift struct {
	ID               string
	UserID           string
	Username         string
	ClockInTime      time.Time
	ClockInLocation  Location
	ClockInNote      *string
	ClockOutTime     *time.Time
	ClockOutLocation *Location
	ClockOutNote     *string
}

// ClockOutPatch: поля, которые clock-out записывает в смену
type ClockOutPatch struct {
	ClockOutTime     time.Time
	ClockOutLocation Location
	ClockOutNote     *string
}

// NewShift создает открытую смену
func NewShift(id, userID, username string, at time.Time, loc Location, note *string) *Shift {
	return &Shift{
		ID:              id,
		UserID:          userID,
		Username:        username,
		ClockInTime:     at.UTC(),
		ClockInLocation: loc,
		ClockInNote:     note,
	}
}

// IsOpen проверяет, что смена еще не закрыта
func (s *Shift) IsOpen() bool {
	return s.ClockOutTime == nil
}

// Close применяет clock-out. Закрытую смену повторно закрыть нельзя.
func (s *Shift) Close(p ClockOutPatch) error {
	if !s.IsOpen() {
		return ErrNoOpenShift
	}
	if p.ClockOutTime.Before(s.ClockInTime) {
		return fmt.Errorf("%w: clock-out %s precedes clock-in %s", ErrValidation,
			p.ClockOutTime.Format(time.RFC3339), s.ClockInTime.Format(time.RFC3339))
	}
	out := p.ClockOutTime.UTC()
	loc := p.ClockOutLocation
	s.ClockOutTime = &out
	s.ClockOutLocation = &loc
	s.ClockOutNote = p.ClockOutNote
	return nil
}

// Duration: длительность смены; для открытой считается до now
func (s *Shift) Duration(now time.Time) time.Duration {
	end := now
	if s.ClockOutTime != nil {
		end = *s.ClockOutTime
	}
	if end.Before(s.ClockInTime) {
		return 0
	}
	return end.Sub(s.ClockInTime)
}

// Clone возвращает глубокую копию
func (s *Shift) Clone() *Shift {
	c := *s
	if s.ClockInNote != nil {
		n := *s.ClockInNote
		c.ClockInNote = &n
	}
	if s.ClockOutTime != nil {
		t := *s.ClockOutTime
		c.ClockOutTime = &t
	}
	if s.ClockOutLocation != nil {
		l := *s.ClockOutLocation
		c.ClockOutLocation = &l
	}
	if s.ClockOutNote != nil {
		n := *s.ClockOutNote
		c.ClockOutNote = &n
	}
	return &c
}

// ClampClockOut не дает clock-out уйти раньше clock-in при сдвиге часов
func ClampClockOut(clockIn, now time.Time) time.Time {
	if now.Before(clockIn) {
		return clockIn
	}
	return now
}

// NormalizeNote обрезает пробелы; пустая заметка становится nil
func NormalizeNote(note *string, maxLen int) (*string, error) {
	if note == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil, nil
	}
	if n := utf8.RuneCountInString(trimmed); maxLen > 0 && n > maxLen {
		return nil, fmt.Errorf("%w: note is %d characters, max %d", ErrValidation, n, maxLen)
	}
	return &trimmed, nil
}
