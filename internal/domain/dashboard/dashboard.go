package dashboard

import "time"

// TaskStats partitions the user's tasks by the completed flag.
type TaskStats struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// ProjectProgress is one row per owned project; projects with no tasks
// appear with both counts at zero. Percentage is left to consumers,
// which must guard the totalTasks == 0 case.
type ProjectProgress struct {
	ProjectID      int64  `json:"projectId"`
	ProjectName    string `json:"projectName"`
	TotalTasks     int    `json:"totalTasks"`
	CompletedTasks int    `json:"completedTasks"`
}

type UpcomingTask struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	DueDate   *time.Time `json:"dueDate"`
	Priority  string     `json:"priority"`
	Completed bool       `json:"completed"`
}

type CalendarTask struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Priority  string `json:"priority"`
	Completed bool   `json:"completed"`
}

// CalendarGroup keys on the exact stored due_date timestamp, not the
// calendar day: two tasks land in the same group only when their due
// dates are identical to the stored precision.
type CalendarGroup struct {
	DueDate time.Time      `json:"dueDate"`
	Tasks   []CalendarTask `json:"tasks"`
}

// Dashboard is the composed view of all four aggregate queries.
type Dashboard struct {
	Stats    TaskStats         `json:"stats"`
	Progress []ProjectProgress `json:"progress"`
	Upcoming []UpcomingTask    `json:"upcomingTasks"`
	Calendar []CalendarGroup   `json:"calendarTasks"`
}
