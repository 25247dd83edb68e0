package model

// OverallStats is the account-wide summary from GET /stats/overview.
type OverallStats struct {
	TotalHabits      int     `json:"totalHabits"`
	TotalEntries     int     `json:"totalEntries"`
	EntriesToday     int     `json:"entriesToday"`
	EntriesThisWeek  int     `json:"entriesThisWeek"`
	AvgEntriesPerDay float64 `json:"avgEntriesPerDay"`
}

// HabitCompletionRate compares actual against expected completions for one
// habit over the queried window.
type HabitCompletionRate struct {
	HabitID             string    `json:"habitId"`
	HabitName           string    `json:"habitName"`
	Frequency           Frequency `json:"frequency"`
	StartDate           string    `json:"startDate"`
	ActualCompletions   int       `json:"actualCompletions"`
	ExpectedCompletions int       `json:"expectedCompletions"`
	CompletionRate      float64   `json:"completionRate"`
}

// DailyCompletion is one point of the daily completion series.
type DailyCompletion struct {
	Date        string `json:"date"`
	Completions int    `json:"completions"`
}

// HabitStats is the on-demand per-habit summary from GET /habits/{id}/stats.
type HabitStats struct {
	HabitID        string    `json:"habitId"`
	HabitName      string    `json:"habitName"`
	Frequency      Frequency `json:"frequency"`
	StartDate      string    `json:"startDate"`
	TotalEntries   int       `json:"totalEntries"`
	CurrentStreak  int       `json:"currentStreak"`
	LongestStreak  int       `json:"longestStreak"`
	CompletionRate float64   `json:"completionRate"`
	LastCompleted  string    `json:"lastCompleted"`
}

// ProgressPoint is one point of a habit's tracking-count-per-day series.
type ProgressPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
