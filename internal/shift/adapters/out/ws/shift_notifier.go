package notification

import (
	"context"
	"fmt"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shift/adapters/view"
	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"
)

// RoleManager: получатели live-ленты
const RoleManager = "manager"

// RoleSender: часть хаба, нужная уведомителю
type RoleSender interface {
	SendToRoleJSON(role string, data any) error
}

type shiftNotifier struct {
	hub RoleSender
	log *logger.Logger
}

func NewShiftNotifier(hub RoleSender, log *logger.Logger) out.ShiftNotifier {
	return &shiftNotifier{hub: hub, log: log}
}

type message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (n *shiftNotifier) NotifyShift(_ context.Context, kind string, shift *domain.Shift) error {
	if err := n.hub.SendToRoleJSON(RoleManager, message{Type: kind, Data: view.FromShift(shift)}); err != nil {
		n.log.Warn(logger.Entry{
			Action:  "notify_shift_failed",
			Message: err.Error(),
			ShiftID: shift.ID,
		})
		return fmt.Errorf("notify %s: %w", kind, err)
	}

	n.log.Debug(logger.Entry{
		Action:  "shift_notified",
		Message: kind,
		ShiftID: shift.ID,
	})
	return nil
}

func (n *shiftNotifier) NotifyPerimeter(_ context.Context, p geofence.Perimeter) error {
	if err := n.hub.SendToRoleJSON(RoleManager, message{Type: out.NotificationPerimeter, Data: view.Perimeter(p)}); err != nil {
		return fmt.Errorf("notify perimeter: %w", err)
	}
	return nil
}
