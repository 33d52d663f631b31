package models

import "time"

// Status is the closed set of states a todo moves through.
type Status string

const (
	StatusBacklog    Status = "BACKLOG"
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusBacklog, StatusPending, StatusInProgress, StatusCompleted}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Todo represents a single task owned by exactly one user. The owner is set
// at creation and never changes.
type Todo struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	Duration    *string    `json:"duration" db:"duration"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// TodoCreate is the payload for creating a todo. The owner never comes from
// the client; it is resolved from the authenticated identity.
type TodoCreate struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	Duration    *string    `json:"duration"`
}

// TodoUpdate is a partial update; nil fields are left untouched.
type TodoUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *Status    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	Duration    *string    `json:"duration"`
}

// TodoPage is one page of a filtered listing.
type TodoPage struct {
	Items []Todo `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
	Pages int    `json:"pages"`
}

// ListParams captures the filter, sort and paging options of a listing request.
type ListParams struct {
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
	Status   *Status
	Search   string
	DueStart *time.Time
	DueEnd   *time.Time
}

// WorkloadEntry is the per-day aggregate of todos by due date. Date is the
// UTC calendar day in YYYY-MM-DD form.
type WorkloadEntry struct {
	Date       string `json:"date" db:"date"`
	Total      int    `json:"total" db:"total"`
	Backlog    int    `json:"backlog" db:"backlog"`
	Pending    int    `json:"pending" db:"pending"`
	InProgress int    `json:"in_progress" db:"in_progress"`
	Completed  int    `json:"completed" db:"completed"`
}
