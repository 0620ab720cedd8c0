package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HazemIbrahim256/sports-academy/internal/application/supersede"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/attendance"
)

// AttendanceWriter stores monthly attendance counts.
type AttendanceWriter interface {
	SetAttendance(ctx context.Context, token string, playerID int, month attendance.Month, days int) (attendance.Record, error)
}

// SaveAttendanceInput carries one attendance cell.
type SaveAttendanceInput struct {
	Token     string
	SessionID string
	PlayerID  int
	Month     attendance.Month
	Days      int
}

// SaveAttendanceDeps holds dependencies for SaveAttendance.
type SaveAttendanceDeps struct {
	Attendance AttendanceWriter
	Tracker    *supersede.Tracker
}

// AttendanceKey scopes supersession to one cell of one browser session.
func AttendanceKey(sessionID string, playerID int, month attendance.Month) string {
	return fmt.Sprintf("attendance:%s:%d:%s", sessionID, playerID, month)
}

// ExecuteSaveAttendance stores a day count. When a newer save for the same
// cell starts while this one is in flight, this result is discarded.
// PRE: Days within [0,365]
// POST: returns supersede.ErrSuperseded when overtaken; ctx errors when the request was cancelled
func ExecuteSaveAttendance(ctx context.Context, input SaveAttendanceInput, deps SaveAttendanceDeps) (attendance.Record, error) {
	if err := attendance.ValidateDays(input.Days); err != nil {
		return attendance.Record{}, err
	}
	if input.PlayerID <= 0 {
		return attendance.Record{}, ErrPlayerRequired
	}

	ticket := deps.Tracker.Begin(AttendanceKey(input.SessionID, input.PlayerID, input.Month))
	defer ticket.Done()

	rec, err := deps.Attendance.SetAttendance(ctx, input.Token, input.PlayerID, input.Month, input.Days)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return attendance.Record{}, ctxErr
	}
	if stale := ticket.Check(); stale != nil {
		slog.Debug("attendance_event", "event", "save_superseded", "player_id", input.PlayerID, "month", input.Month.String())
		return attendance.Record{}, stale
	}
	if err != nil {
		return attendance.Record{}, fmt.Errorf("save attendance: %w", err)
	}
	slog.Info("attendance_event", "event", "attendance_saved", "player_id", input.PlayerID, "month", input.Month.String(), "days", rec.Days)
	return rec, nil
}
