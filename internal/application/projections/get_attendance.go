package projections

import (
	"context"
	"fmt"

	"github.com/HazemIbrahim256/sports-academy/internal/domain/attendance"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
)

// GetAttendanceQuery carries input for the monthly attendance sheet.
type GetAttendanceQuery struct {
	Token string
	Month attendance.Month
}

// GetAttendanceDeps holds dependencies for the attendance sheet.
type GetAttendanceDeps struct {
	GroupReader GroupReader
}

// AttendanceResult carries the attendance sheet. Players' AttendanceDays hold
// the days recorded for Month.
type AttendanceResult struct {
	Month  attendance.Month `json:"-"`
	Label  string           `json:"label"`
	Value  string           `json:"month"`
	Prev   string           `json:"prev"`
	Next   string           `json:"next"`
	Groups []group.Group    `json:"groups"`
}

// QueryGetAttendance loads every group with per-player days for the month.
func QueryGetAttendance(ctx context.Context, query GetAttendanceQuery, deps GetAttendanceDeps) (AttendanceResult, error) {
	groups, err := deps.GroupReader.ListGroups(ctx, query.Token, query.Month.String())
	if err != nil {
		return AttendanceResult{}, fmt.Errorf("list groups for %s: %w", query.Month, err)
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return AttendanceResult{
		Month:  query.Month,
		Label:  query.Month.Label(),
		Value:  query.Month.String(),
		Prev:   query.Month.Prev().String(),
		Next:   query.Month.Next().String(),
		Groups: groups,
	}, nil
}
