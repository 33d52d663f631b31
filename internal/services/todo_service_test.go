package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/rmarbach/todoboard-be/internal/models"
	"github.com/rmarbach/todoboard-be/internal/services"
)

func createTestUser(t *testing.T, db *sqlx.DB, username string) models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.New().String(),
		Username: username,
		FullName: username,
		Role:     models.RoleUser,
	}
	_, err := db.Exec(
		"INSERT INTO users (id, username, full_name, role, password_hash) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Username, user.FullName, user.Role, "x")
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func statusPtr(s models.Status) *models.Status { return &s }

func TestCreateTodo(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@todo.dev")

	t.Run("defaults and server-assigned fields", func(t *testing.T) {
		todo, err := svc.Create(ctx, owner.ID, models.TodoCreate{Title: "Buy milk"})
		require.NoError(t, err)
		require.NotEmpty(t, todo.ID)
		require.Equal(t, owner.ID, todo.UserID)
		require.Equal(t, models.StatusBacklog, todo.Status)
		require.True(t, todo.CreatedAt.Equal(todo.UpdatedAt))
		require.Nil(t, todo.DueDate)

		other, err := svc.Create(ctx, owner.ID, models.TodoCreate{Title: "Buy milk"})
		require.NoError(t, err)
		require.NotEqual(t, todo.ID, other.ID)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, owner.ID, models.TodoCreate{Title: "   "})
		var ve *services.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "title", ve.Field)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, owner.ID, models.TodoCreate{Title: "x", Status: "DONEISH"})
		var ve *services.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "status", ve.Field)
	})
}

func TestListTodos(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@todo.dev")

	due := func(day int) *time.Time {
		return timePtr(time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC))
	}

	titles := []string{"alpha", "Bravo", "charlie", "delta", "echo"}
	for i, title := range titles {
		in := models.TodoCreate{Title: title}
		if i < 3 {
			in.DueDate = due(10 + i)
		}
		if i == 1 {
			in.Status = models.StatusPending
		}
		_, err := svc.Create(ctx, owner.ID, in)
		require.NoError(t, err)
	}

	t.Run("pagination envelope", func(t *testing.T) {
		page, err := svc.List(ctx, owner.ID, models.ListParams{Page: 1, Size: 2, SortBy: "title"})
		require.NoError(t, err)
		require.Equal(t, 5, page.Total)
		require.Equal(t, 3, page.Pages)
		require.Len(t, page.Items, 2)

		last, err := svc.List(ctx, owner.ID, models.ListParams{Page: 3, Size: 2, SortBy: "title"})
		require.NoError(t, err)
		require.Len(t, last.Items, 1)
	})

	t.Run("page beyond range is empty with correct total", func(t *testing.T) {
		page, err := svc.List(ctx, owner.ID, models.ListParams{Page: 99, Size: 2})
		require.NoError(t, err)
		require.Empty(t, page.Items)
		require.Equal(t, 5, page.Total)
		require.Equal(t, 99, page.Page)
	})

	t.Run("sort by title ascending", func(t *testing.T) {
		page, err := svc.List(ctx, owner.ID, models.ListParams{Page: 1, Size: 10, SortBy: "title"})
		require.NoError(t, err)
		got := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			got = append(got, item.Title)
		}
		require.Equal(t, []string{"Bravo", "alpha", "charlie", "delta", "echo"}, got)
	})

	t.Run("unknown sort key falls back to created_at", func(t *testing.T) {
		page, err := svc.List(ctx, owner.ID, models.ListParams{Page: 1, Size: 10, SortBy: "owner_id; DROP TABLE todos"})
		require.NoError(t, err)
		require.Len(t, page.Items, 5)
	})

	t.Run("status filter", func(t *testing.T) {
		page, err := svc.List(ctx, owner.ID, models.ListParams{Page: 1, Size: 10, Status: statusPtr(models.StatusPending)})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		require.Equal(t, "Bravo", page.Items[0].Title)
	})

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		page, err := svc.List(ctx, owner.ID, models.ListParams{Page: 1, Size: 10, Search: "RAV"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		require.Equal(t, "Bravo", page.Items[0].Title)
	})

	t.Run("due date bounds are inclusive and independent", func(t *testing.T) {
		page, err := svc.List(ctx, owner.ID, models.ListParams{
			Page: 1, Size: 10,
			DueStart: timePtr(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)),
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)

		page, err = svc.List(ctx, owner.ID, models.ListParams{
			Page: 1, Size: 10,
			DueStart: timePtr(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)),
			DueEnd:   timePtr(time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)),
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
	})
}

func TestUpdateTodo(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@todo.dev")

	t.Run("partial update leaves other fields untouched", func(t *testing.T) {
		created, err := svc.Create(ctx, owner.ID, models.TodoCreate{
			Title:       "Write report",
			Description: strPtr("quarterly numbers"),
			Duration:    strPtr("2h"),
			DueDate:     timePtr(time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)),
		})
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		updated, err := svc.Update(ctx, created.ID, owner.ID, models.TodoUpdate{
			Status: statusPtr(models.StatusInProgress),
		})
		require.NoError(t, err)

		require.Equal(t, models.StatusInProgress, updated.Status)
		require.Equal(t, created.Title, updated.Title)
		require.Equal(t, *created.Description, *updated.Description)
		require.Equal(t, *created.Duration, *updated.Duration)
		require.True(t, created.DueDate.Equal(*updated.DueDate))
		require.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		require.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	})

	t.Run("empty title rejected", func(t *testing.T) {
		created, err := svc.Create(ctx, owner.ID, models.TodoCreate{Title: "keep me"})
		require.NoError(t, err)

		_, err = svc.Update(ctx, created.ID, owner.ID, models.TodoUpdate{Title: strPtr("  ")})
		var ve *services.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New().String(), owner.ID, models.TodoUpdate{Title: strPtr("x")})
		require.ErrorIs(t, err, services.ErrNotFound)
	})
}

func TestOwnershipOpacity(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice@todo.dev")
	bob := createTestUser(t, db, "bob@todo.dev")

	todo, err := svc.Create(ctx, alice.ID, models.TodoCreate{Title: "alice's secret"})
	require.NoError(t, err)

	t.Run("foreign update reads as not found", func(t *testing.T) {
		_, err := svc.Update(ctx, todo.ID, bob.ID, models.TodoUpdate{Title: strPtr("stolen")})
		require.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("foreign delete reads as not found", func(t *testing.T) {
		err := svc.Delete(ctx, todo.ID, bob.ID)
		require.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("foreign list is empty", func(t *testing.T) {
		page, err := svc.List(ctx, bob.ID, models.ListParams{Page: 1, Size: 10})
		require.NoError(t, err)
		require.Empty(t, page.Items)
		require.Equal(t, 0, page.Total)
	})

	t.Run("owner still sees the record unchanged", func(t *testing.T) {
		page, err := svc.List(ctx, alice.ID, models.ListParams{Page: 1, Size: 10})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		require.Equal(t, "alice's secret", page.Items[0].Title)
	})
}

func TestDeleteTodo(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@todo.dev")

	todo, err := svc.Create(ctx, owner.ID, models.TodoCreate{Title: "Buy milk"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, todo.ID, owner.ID))

	page, err := svc.List(ctx, owner.ID, models.ListParams{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Equal(t, 0, page.Total)

	require.ErrorIs(t, svc.Delete(ctx, todo.ID, owner.ID), services.ErrNotFound)
}

func TestStatusStats(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@todo.dev")

	t.Run("all statuses present even with no todos", func(t *testing.T) {
		stats, err := svc.StatusStats(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, stats, 4)
		for _, status := range models.AllStatuses() {
			require.Equal(t, 0, stats[status])
		}
	})

	t.Run("counts sum to total", func(t *testing.T) {
		for _, status := range []models.Status{
			models.StatusBacklog, models.StatusBacklog,
			models.StatusPending, models.StatusCompleted,
		} {
			_, err := svc.Create(ctx, owner.ID, models.TodoCreate{Title: "t", Status: status})
			require.NoError(t, err)
		}

		stats, err := svc.StatusStats(ctx, owner.ID)
		require.NoError(t, err)
		require.Equal(t, 2, stats[models.StatusBacklog])
		require.Equal(t, 1, stats[models.StatusPending])
		require.Equal(t, 0, stats[models.StatusInProgress])
		require.Equal(t, 1, stats[models.StatusCompleted])

		sum := 0
		for _, n := range stats {
			sum += n
		}
		require.Equal(t, 4, sum)
	})
}

func TestWorkloadStats(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@todo.dev")

	mar10Morning := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	mar10Night := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	mar11 := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)

	for _, in := range []models.TodoCreate{
		{Title: "a", DueDate: &mar10Morning, Status: models.StatusPending},
		{Title: "b", DueDate: &mar10Night, Status: models.StatusCompleted},
		{Title: "c", DueDate: &mar11},
		{Title: "no due date"},
	} {
		_, err := svc.Create(ctx, owner.ID, in)
		require.NoError(t, err)
	}

	entries, err := svc.WorkloadStats(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2, "todos without a due date must be excluded")

	require.Equal(t, "2025-03-10", entries[0].Date)
	require.Equal(t, 2, entries[0].Total)
	require.Equal(t, 1, entries[0].Pending)
	require.Equal(t, 1, entries[0].Completed)
	require.Equal(t, entries[0].Total,
		entries[0].Backlog+entries[0].Pending+entries[0].InProgress+entries[0].Completed)

	require.Equal(t, "2025-03-11", entries[1].Date)
	require.Equal(t, 1, entries[1].Total)
	require.Equal(t, 1, entries[1].Backlog)
}
