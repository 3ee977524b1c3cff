package sqlite

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	m, err := store.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	db, err := m.GetDB("test")
	if err != nil {
		t.Fatalf("GetDB() error = %v", err)
	}
	return db
}

func TestTaskRepository_LoadEmpty(t *testing.T) {
	repo := NewTaskRepository(openTestDB(t))

	snaps, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("Load() = %v, want no tasks", snaps)
	}
}

func TestTaskRepository_SaveLoadRoundTrip(t *testing.T) {
	repo := NewTaskRepository(openTestDB(t))
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 9, 0, 0, 123456789, time.UTC)
	deadline := created.Add(36 * time.Hour)

	want := []domain.TaskSnapshot{
		{ID: "tp-0003", Content: "ship", Completed: false, Dependencies: []string{"tp-0002", "tp-gone", "tp-0001"}, EstimatedHours: 1.5, Deadline: &deadline, CreatedAt: created},
		{ID: "tp-0002", Content: "build", Completed: true, Dependencies: []string{}, CreatedAt: created},
		{ID: "tp-0001", Content: "plan", Dependencies: []string{}, EstimatedHours: 3, CreatedAt: created},
	}

	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v\nwant %+v", got, want)
	}
}

func TestTaskRepository_SaveReplacesPreviousSet(t *testing.T) {
	repo := NewTaskRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	first := []domain.TaskSnapshot{
		{ID: "a", Content: "a", Dependencies: []string{}, CreatedAt: now},
		{ID: "b", Content: "b", Dependencies: []string{"a"}, CreatedAt: now},
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second := []domain.TaskSnapshot{
		{ID: "b", Content: "b", Dependencies: []string{"a"}, CreatedAt: now},
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Errorf("Load() = %+v, want %+v", got, second)
	}
}

func TestTaskRepository_SaveFailureKeepsPreviousSet(t *testing.T) {
	repo := NewTaskRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	good := []domain.TaskSnapshot{{ID: "a", Content: "a", Dependencies: []string{}, CreatedAt: now}}
	if err := repo.Save(ctx, good); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	bad := []domain.TaskSnapshot{{ID: "x", Content: "", CreatedAt: now}}
	if err := repo.Save(ctx, bad); err == nil {
		t.Fatal("Save() with empty content should fail")
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, good) {
		t.Errorf("Load() = %+v, want %+v", got, good)
	}
}
