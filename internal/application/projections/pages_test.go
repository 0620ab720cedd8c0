package projections

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/HazemIbrahim256/sports-academy/internal/application/listutil"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/attendance"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/evaluation"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/rating"
)

// TestQueryGetGroupList_StaffGetsCoaches verifies the create form choices are loaded for staff only.
func TestQueryGetGroupList_StaffGetsCoaches(t *testing.T) {
	tests := []struct {
		name        string
		kind        identity.Kind
		wantCoaches int
	}{
		{"staff", identity.Staff, 2},
		{"coach", identity.Coach, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockAcademy{groups: []group.Group{{ID: 1}}, coaches: []coach.Coach{{ID: 1}, {ID: 2}}}
			res, err := QueryGetGroupList(context.Background(),
				GetGroupListQuery{Token: "tok", Viewer: identity.Identity{Kind: tt.kind}},
				GetGroupListDeps{GroupReader: m, CoachReader: m})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Coaches) != tt.wantCoaches {
				t.Errorf("len(Coaches) = %d, want %d", len(res.Coaches), tt.wantCoaches)
			}
			if res.CanManage != (tt.kind == identity.Staff) {
				t.Errorf("CanManage = %v", res.CanManage)
			}
		})
	}
}

// TestQueryGetGroupDetail_AvailableExcludesMembers verifies players already in the group are not offered.
func TestQueryGetGroupDetail_AvailableExcludesMembers(t *testing.T) {
	m := &mockAcademy{
		groups: []group.Group{{ID: 9, Name: "U12"}},
		players: []player.Player{
			{ID: 4, Name: "In", Group: intPtr(9), Photo: "/media/in.png"},
			{ID: 5, Name: "Other", Group: intPtr(3)},
			{ID: 6, Name: "Loose"},
		},
	}
	res, err := QueryGetGroupDetail(context.Background(),
		GetGroupDetailQuery{Token: "tok", GroupID: 9, Origin: "http://h"},
		GetGroupDetailDeps{GroupReader: m, PlayerReader: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Players) != 1 || res.Players[0].ID != 4 {
		t.Fatalf("Players = %+v, want only player 4", res.Players)
	}
	if res.Players[0].PhotoURL != "http://h/media/in.png" {
		t.Errorf("PhotoURL = %q", res.Players[0].PhotoURL)
	}
	if len(res.Available) != 2 || res.Available[0].ID != 5 || res.Available[1].ID != 6 {
		t.Errorf("Available = %+v, want players 5 and 6", res.Available)
	}
}

// TestQueryGetGroupDetail_NotFound verifies a missing group surfaces the reader error.
func TestQueryGetGroupDetail_NotFound(t *testing.T) {
	m := &mockAcademy{}
	_, err := QueryGetGroupDetail(context.Background(), GetGroupDetailQuery{GroupID: 1}, GetGroupDetailDeps{GroupReader: m, PlayerReader: m})
	if !errors.Is(err, errNotSeeded) {
		t.Fatalf("err = %v, want errNotSeeded", err)
	}
}

// TestQueryGetPlayerList_SelectionAndFilters verifies group fallback, search and sort.
func TestQueryGetPlayerList_SelectionAndFilters(t *testing.T) {
	m := &mockAcademy{
		groups: []group.Group{{ID: 2}, {ID: 3}},
		players: []player.Player{
			{ID: 1, Name: "zed", Age: 9, Group: intPtr(2)},
			{ID: 2, Name: "Amy", Age: 11, Group: intPtr(2)},
			{ID: 3, Name: "Bob", Age: 10, Group: intPtr(3)},
			{ID: 4, Name: "Zoe", Age: 12, Group: intPtr(2)},
		},
	}
	deps := GetPlayerListDeps{GroupReader: m, PlayerReader: m}

	tests := []struct {
		name      string
		groupID   int
		query     string
		wantGroup int
		wantIDs   []int
	}{
		{"defaults to first group", 0, "", 2, []int{1, 2, 4}},
		{"unknown group falls back", 42, "", 2, []int{1, 2, 4}},
		{"explicit group", 3, "", 3, []int{3}},
		{"sort by name", 2, "sort=name&dir=asc", 2, []int{2, 1, 4}},
		{"sort by age desc", 2, "sort=age&dir=desc", 2, []int{4, 2, 1}},
		{"search", 2, "q=z", 2, []int{1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			lp := listutil.ParseListParams(q, PlayerSortColumns, nil)
			res, err := QueryGetPlayerList(context.Background(), GetPlayerListQuery{Token: "tok", GroupID: tt.groupID, List: lp}, deps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.SelectedGroupID != tt.wantGroup {
				t.Errorf("SelectedGroupID = %d, want %d", res.SelectedGroupID, tt.wantGroup)
			}
			if len(res.Players) != len(tt.wantIDs) {
				t.Fatalf("len(Players) = %d, want %d", len(res.Players), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if res.Players[i].ID != id {
					t.Errorf("Players[%d] = %d, want %d", i, res.Players[i].ID, id)
				}
			}
		})
	}
}

// TestQueryGetPlayerList_NoGroups verifies no player call is made without groups.
func TestQueryGetPlayerList_NoGroups(t *testing.T) {
	m := &mockAcademy{}
	res, err := QueryGetPlayerList(context.Background(), GetPlayerListQuery{}, GetPlayerListDeps{GroupReader: m, PlayerReader: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SelectedGroupID != 0 || len(res.Players) != 0 || m.calls != 1 {
		t.Errorf("got group %d, %d players, %d calls", res.SelectedGroupID, len(res.Players), m.calls)
	}
}

// TestQueryGetPlayerProfile_WithEvaluation verifies skill rows and the average label.
func TestQueryGetPlayerProfile_WithEvaluation(t *testing.T) {
	ev := evaluation.Evaluation{ID: 11, Player: 5, AverageRating: avg(3.5), Notes: "Good **feet**"}
	ev.SetSkill("passing", 4)
	later := evaluation.Evaluation{ID: 12, Player: 5}
	m := &mockAcademy{
		players:     []player.Player{{ID: 5, Name: "Sam", Photo: "/media/s.png"}},
		evaluations: []evaluation.Evaluation{ev, later},
	}
	res, err := QueryGetPlayerProfile(context.Background(),
		GetPlayerProfileQuery{Token: "tok", PlayerID: 5, Origin: "http://h"},
		GetPlayerProfileDeps{PlayerReader: m, EvaluationReader: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Evaluation == nil || res.Evaluation.ID != 11 {
		t.Fatalf("Evaluation = %v, want the first listed (11)", res.Evaluation)
	}
	if res.AverageLabel != "Very Good" || res.AverageText != "3.50" {
		t.Errorf("average = %q/%q, want Very Good/3.50", res.AverageLabel, res.AverageText)
	}
	if len(res.Sections) != len(evaluation.Categories()) {
		t.Fatalf("len(Sections) = %d", len(res.Sections))
	}
	passing := res.Sections[0].Rows[1]
	if passing.Key != "passing" || passing.Text != "4 (Very Good)" || !passing.Rated {
		t.Errorf("passing row = %+v", passing)
	}
	if res.Sections[0].Rows[0].Text != rating.NoRating {
		t.Errorf("unrated row text = %q, want %q", res.Sections[0].Rows[0].Text, rating.NoRating)
	}
	if res.Scores["passing"] != 4 || res.Scores["ball_control"] != evaluation.DefaultScore {
		t.Errorf("Scores = %v", res.Scores)
	}
	if res.PhotoURL != "http://h/media/s.png" {
		t.Errorf("PhotoURL = %q", res.PhotoURL)
	}
}

// TestQueryGetPlayerProfile_NoEvaluation verifies an unevaluated player renders placeholders.
func TestQueryGetPlayerProfile_NoEvaluation(t *testing.T) {
	m := &mockAcademy{players: []player.Player{{ID: 5, Name: "Sam"}}}
	res, err := QueryGetPlayerProfile(context.Background(), GetPlayerProfileQuery{PlayerID: 5}, GetPlayerProfileDeps{PlayerReader: m, EvaluationReader: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Evaluation != nil || len(res.Sections) != 0 {
		t.Errorf("Evaluation = %v, Sections = %d; want none", res.Evaluation, len(res.Sections))
	}
	if res.AverageLabel != rating.NoRating {
		t.Errorf("AverageLabel = %q", res.AverageLabel)
	}
}

// TestQueryGetCoachList_SearchAndSort verifies filtering on user fields and sorting by name.
func TestQueryGetCoachList_SearchAndSort(t *testing.T) {
	m := &mockAcademy{coaches: []coach.Coach{
		{ID: 1, User: coach.User{Username: "zz", FirstName: "Zara"}},
		{ID: 2, User: coach.User{Username: "aa", FirstName: "Adam", Email: "adam@club.test"}},
		{ID: 3, User: coach.User{Username: "mm", FirstName: "Mia", Email: "mia@club.test"}},
	}}
	q, _ := url.ParseQuery("q=club&sort=name&dir=desc")
	res, err := QueryGetCoachList(context.Background(),
		GetCoachListQuery{Token: "tok", List: listutil.ParseListParams(q, CoachSortColumns, nil)},
		GetCoachListDeps{CoachReader: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Coaches) != 2 || res.Coaches[0].ID != 3 || res.Coaches[1].ID != 2 {
		t.Errorf("Coaches = %+v, want 3 then 2", res.Coaches)
	}
}

// TestQueryGetCoachDetail_Assignable verifies assignable groups exclude the coach's own.
func TestQueryGetCoachDetail_Assignable(t *testing.T) {
	m := &mockAcademy{
		coaches: []coach.Coach{{ID: 7, Groups: []coach.GroupRef{{ID: 2, Name: "B"}}}},
		groups:  []group.Group{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}},
	}
	res, err := QueryGetCoachDetail(context.Background(), GetCoachDetailQuery{Token: "tok", CoachID: 7}, GetCoachDetailDeps{CoachReader: m, GroupReader: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Assignable) != 2 || res.Assignable[0].ID != 1 || res.Assignable[1].ID != 3 {
		t.Errorf("Assignable = %+v, want groups 1 and 3", res.Assignable)
	}
}

// TestQueryGetAttendance_PassesMonth verifies the month is forwarded and navigation is computed.
func TestQueryGetAttendance_PassesMonth(t *testing.T) {
	m := &mockAcademy{groups: []group.Group{{ID: 1, Players: []player.Player{{ID: 1, AttendanceDays: 12}}}}}
	month, err := attendance.ParseMonth("2024-01")
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	res, err := QueryGetAttendance(context.Background(), GetAttendanceQuery{Token: "tok", Month: month}, GetAttendanceDeps{GroupReader: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.months) != 1 || m.months[0] != "2024-01" {
		t.Errorf("requested months = %v, want [2024-01]", m.months)
	}
	if res.Prev != "2023-12" || res.Next != "2024-02" {
		t.Errorf("Prev/Next = %s/%s", res.Prev, res.Next)
	}
	if res.Groups[0].Players[0].AttendanceDays != 12 {
		t.Errorf("days = %d, want 12", res.Groups[0].Players[0].AttendanceDays)
	}
}
