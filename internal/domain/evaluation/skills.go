package evaluation

// Skill is one rated attribute.
type Skill struct {
	Key   string
	Label string
}

// Category groups skills the way report cards present them.
type Category struct {
	Title  string
	Skills []Skill
}

// AttendanceKey is excluded from the average by the academy API.
const AttendanceKey = "attendance_and_punctuality"

var catalogue = []Category{
	{Title: "Technical Skills", Skills: []Skill{
		{"ball_control", "Ball control"},
		{"passing", "Passing"},
		{"dribbling", "Dribbling"},
		{"shooting", "Shooting"},
		{"using_both_feet", "Using both feet"},
	}},
	{Title: "Physical Abilities", Skills: []Skill{
		{"speed", "Speed"},
		{"agility", "Agility"},
		{"endurance", "Endurance"},
		{"strength", "Strength"},
	}},
	{Title: "Technical Understanding", Skills: []Skill{
		{"positioning", "Positioning"},
		{"decision_making", "Decision making"},
		{"game_awareness", "Game awareness"},
		{"teamwork", "Teamwork"},
	}},
	{Title: "Psychological and Social", Skills: []Skill{
		{"respect", "Respect"},
		{"sportsmanship", "Sportsmanship"},
		{"confidence", "Confidence"},
		{"leadership", "Leadership"},
	}},
	{Title: "Overall", Skills: []Skill{
		{AttendanceKey, "Attendance and punctuality"},
	}},
}

var keys = func() []string {
	var out []string
	for _, c := range catalogue {
		for _, s := range c.Skills {
			out = append(out, s.Key)
		}
	}
	return out
}()

// Categories returns the ordered skill catalogue.
func Categories() []Category {
	return catalogue
}

// Keys returns every skill key in catalogue order.
func Keys() []string {
	return keys
}
