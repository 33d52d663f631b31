package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rmarbach/todoboard-be/internal/models"
)

// TodoServiceProvider defines the interface for todo services. Every
// operation is scoped to the owning user; there is no way to reach another
// user's records through this interface.
type TodoServiceProvider interface {
	List(ctx context.Context, ownerID string, params models.ListParams) (models.TodoPage, error)
	Create(ctx context.Context, ownerID string, in models.TodoCreate) (models.Todo, error)
	Update(ctx context.Context, id, ownerID string, in models.TodoUpdate) (models.Todo, error)
	Delete(ctx context.Context, id, ownerID string) error
	StatusStats(ctx context.Context, ownerID string) (map[models.Status]int, error)
	WorkloadStats(ctx context.Context, ownerID string) ([]models.WorkloadEntry, error)
}

const (
	defaultPageSize = 10
	maxPageSize     = 100

	todoColumns = "id, user_id, title, description, status, due_date, duration, created_at, updated_at"
)

// Columns clients may sort by. Unknown keys fall back to created_at rather
// than failing the request.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"title":      "title",
}

// TodoService provides business logic for todo management.
type TodoService struct {
	db *sqlx.DB
}

// NewTodoService creates a new TodoService.
func NewTodoService(db *sqlx.DB) *TodoService {
	return &TodoService{db: db}
}

// List returns one page of the owner's todos matching the given filters.
func (s *TodoService) List(ctx context.Context, ownerID string, params models.ListParams) (models.TodoPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Size < 1 {
		params.Size = defaultPageSize
	}
	if params.Size > maxPageSize {
		params.Size = maxPageSize
	}

	where := "WHERE user_id = ?"
	args := []interface{}{ownerID}

	if params.Status != nil {
		where += " AND status = ?"
		args = append(args, *params.Status)
	}
	if params.Search != "" {
		where += " AND instr(lower(title), lower(?)) > 0"
		args = append(args, params.Search)
	}
	if params.DueStart != nil {
		where += " AND due_date IS NOT NULL AND datetime(due_date) >= datetime(?)"
		args = append(args, params.DueStart.UTC())
	}
	if params.DueEnd != nil {
		where += " AND due_date IS NOT NULL AND datetime(due_date) <= datetime(?)"
		args = append(args, params.DueEnd.UTC())
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM todos "+where, args...); err != nil {
		return models.TodoPage{}, storeErr("count todos", err)
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	// Secondary id key keeps pagination deterministic across equal sort keys.
	query := fmt.Sprintf("SELECT %s FROM todos %s ORDER BY %s %s, id ASC LIMIT ? OFFSET ?",
		todoColumns, where, column, direction)
	args = append(args, params.Size, (params.Page-1)*params.Size)

	items := []models.Todo{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return models.TodoPage{}, storeErr("list todos", err)
	}

	return models.TodoPage{
		Items: items,
		Total: total,
		Page:  params.Page,
		Size:  params.Size,
		Pages: (total + params.Size - 1) / params.Size,
	}, nil
}

// Create inserts a new todo for the owner. The server assigns the identity
// and both timestamps; status defaults to BACKLOG.
func (s *TodoService) Create(ctx context.Context, ownerID string, in models.TodoCreate) (models.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Todo{}, &ValidationError{Field: "title", Message: "title must not be empty"}
	}

	status := in.Status
	if status == "" {
		status = models.StatusBacklog
	}
	if !status.Valid() {
		return models.Todo{}, &ValidationError{Field: "status", Message: "status must be one of BACKLOG, PENDING, IN_PROGRESS, COMPLETED"}
	}

	now := time.Now().UTC()
	todo := models.Todo{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		Status:      status,
		Duration:    in.Duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		todo.DueDate = &due
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO todos ("+todoColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		todo.ID, todo.UserID, todo.Title, todo.Description, todo.Status,
		todo.DueDate, todo.Duration, todo.CreatedAt, todo.UpdatedAt)
	if err != nil {
		return models.Todo{}, storeErr("insert todo", err)
	}
	return todo, nil
}

// Update applies a partial update to the owner's todo. Only non-nil fields
// are set; updated_at is always refreshed. A missing id and a foreign-owned
// id produce the same ErrNotFound.
func (s *TodoService) Update(ctx context.Context, id, ownerID string, in models.TodoUpdate) (models.Todo, error) {
	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return models.Todo{}, &ValidationError{Field: "title", Message: "title must not be empty"}
		}
		set = append(set, "title = ?")
		args = append(args, title)
	}
	if in.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *in.Description)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return models.Todo{}, &ValidationError{Field: "status", Message: "status must be one of BACKLOG, PENDING, IN_PROGRESS, COMPLETED"}
		}
		set = append(set, "status = ?")
		args = append(args, *in.Status)
	}
	if in.DueDate != nil {
		set = append(set, "due_date = ?")
		args = append(args, in.DueDate.UTC())
	}
	if in.Duration != nil {
		set = append(set, "duration = ?")
		args = append(args, *in.Duration)
	}

	// Field-level SET, never whole-row replace, so concurrent updates to
	// disjoint fields cannot clobber each other.
	query := "UPDATE todos SET " + strings.Join(set, ", ") + " WHERE id = ? AND user_id = ?"
	args = append(args, id, ownerID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return models.Todo{}, storeErr("update todo", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Todo{}, storeErr("update todo", err)
	}
	if affected == 0 {
		return models.Todo{}, ErrNotFound
	}
	return s.getByID(ctx, id, ownerID)
}

// Delete removes the owner's todo. Same ownership-opacity rule as Update.
func (s *TodoService) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return storeErr("delete todo", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete todo", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// StatusStats counts the owner's todos per status. Every status is present
// in the result, zero-filled if unused.
func (s *TodoService) StatusStats(ctx context.Context, ownerID string) (map[models.Status]int, error) {
	rows := []struct {
		Status models.Status `db:"status"`
		Count  int           `db:"count"`
	}{}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT status, COUNT(*) AS count FROM todos WHERE user_id = ? GROUP BY status", ownerID)
	if err != nil {
		return nil, storeErr("status stats", err)
	}

	stats := make(map[models.Status]int, 4)
	for _, status := range models.AllStatuses() {
		stats[status] = 0
	}
	for _, row := range rows {
		if _, ok := stats[row.Status]; ok {
			stats[row.Status] = row.Count
		}
	}
	return stats, nil
}

// WorkloadStats aggregates the owner's todos by the UTC calendar day of
// their due date, ascending. Todos without a due date are excluded.
func (s *TodoService) WorkloadStats(ctx context.Context, ownerID string) ([]models.WorkloadEntry, error) {
	const query = `
	SELECT date(due_date) AS date,
	       COUNT(*) AS total,
	       SUM(CASE WHEN status = 'BACKLOG' THEN 1 ELSE 0 END) AS backlog,
	       SUM(CASE WHEN status = 'PENDING' THEN 1 ELSE 0 END) AS pending,
	       SUM(CASE WHEN status = 'IN_PROGRESS' THEN 1 ELSE 0 END) AS in_progress,
	       SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END) AS completed
	FROM todos
	WHERE user_id = ? AND due_date IS NOT NULL
	GROUP BY date(due_date)
	ORDER BY date(due_date) ASC`

	entries := []models.WorkloadEntry{}
	if err := s.db.SelectContext(ctx, &entries, query, ownerID); err != nil {
		return nil, storeErr("workload stats", err)
	}
	return entries, nil
}

func (s *TodoService) getByID(ctx context.Context, id, ownerID string) (models.Todo, error) {
	var todo models.Todo
	err := s.db.GetContext(ctx, &todo,
		"SELECT "+todoColumns+" FROM todos WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Todo{}, ErrNotFound
		}
		return models.Todo{}, storeErr("get todo", err)
	}
	return todo, nil
}
