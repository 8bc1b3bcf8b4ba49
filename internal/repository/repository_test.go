package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"task-manager/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), log)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := Close(db); err != nil {
			t.Logf("close db: %v", err)
		}
	})
	return db
}

func seed(t *testing.T, db *gorm.DB) (*model.User, *model.Category) {
	t.Helper()
	ctx := context.Background()
	user := &model.User{Name: "Ana", Email: "ana@ex.com"}
	if err := NewUserRepository(db).Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	category := &model.Category{Name: "Work"}
	if err := NewCategoryRepository(db).Create(ctx, category); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return user, category
}

func TestTaskRepositoryLifecycle(t *testing.T) {
	db := newTestDB(t)
	user, category := seed(t, db)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	desc := "Revisar documentação e exemplos"
	task := &model.Task{Title: "Estudar Vitest", Description: &desc, UserID: user.ID, CategoryID: category.ID}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Estudar Vitest" || got.Completed || got.Description == nil || *got.Description != desc {
		t.Fatalf("unexpected task: %+v", got)
	}

	updated, err := repo.Update(ctx, task.ID, map[string]interface{}{"title": "Estudar Go", "completed": true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Estudar Go" || !updated.Completed {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Description == nil || *updated.Description != desc {
		t.Fatalf("description should be untouched, got %v", updated.Description)
	}

	deleted, err := repo.Delete(ctx, task.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != task.ID {
		t.Fatalf("expected deleted row %d, got %d", task.ID, deleted.ID)
	}
	if _, err := repo.GetByID(ctx, task.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found after delete, got %v", err)
	}
	if _, err := repo.Delete(ctx, task.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found on second delete, got %v", err)
	}
}

func TestTaskRepositoryCreateRejectsMissingReferences(t *testing.T) {
	db := newTestDB(t)
	user, category := seed(t, db)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	tests := []struct {
		name       string
		userID     uint
		categoryID uint
	}{
		{name: "missing user", userID: user.ID + 100, categoryID: category.ID},
		{name: "missing category", userID: user.ID, categoryID: category.ID + 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, &model.Task{Title: "orphan", UserID: tt.userID, CategoryID: tt.categoryID})
			if !errors.Is(err, gorm.ErrForeignKeyViolated) {
				t.Fatalf("expected foreign key violation, got %v", err)
			}
		})
	}

	tasks, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no orphaned rows, got %d", len(tasks))
	}
}

func TestTaskRepositoryListAllOrdersByID(t *testing.T) {
	db := newTestDB(t)
	user, category := seed(t, db)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	empty, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if empty == nil {
		t.Fatal("expected empty slice, got nil")
	}

	for _, title := range []string{"first", "second", "third"} {
		if err := repo.Create(ctx, &model.Task{Title: title, UserID: user.ID, CategoryID: category.ID}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	tasks, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 3 || tasks[0].Title != "first" || tasks[2].Title != "third" {
		t.Fatalf("unexpected order: %+v", tasks)
	}
}

func TestTaskRepositoryListOpenByUser(t *testing.T) {
	db := newTestDB(t)
	user, category := seed(t, db)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	open := &model.Task{Title: "open", UserID: user.ID, CategoryID: category.ID}
	done := &model.Task{Title: "done", Completed: true, UserID: user.ID, CategoryID: category.ID}
	for _, task := range []*model.Task{open, done} {
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tasks, err := repo.ListOpenByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != open.ID {
		t.Fatalf("expected only the open task, got %+v", tasks)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.User{Name: "Ana", Email: "ana@ex.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(ctx, &model.User{Name: "Other Ana", Email: "ana@ex.com"})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicated key, got %v", err)
	}
}

func TestDeleteReferencedRowsIsRestricted(t *testing.T) {
	db := newTestDB(t)
	user, category := seed(t, db)
	ctx := context.Background()

	task := &model.Task{Title: "keep", UserID: user.ID, CategoryID: category.ID}
	if err := NewTaskRepository(db).Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := NewUserRepository(db).Delete(ctx, user.ID); !errors.Is(err, gorm.ErrForeignKeyViolated) {
		t.Fatalf("expected user delete to be restricted, got %v", err)
	}
	if _, err := NewCategoryRepository(db).Delete(ctx, category.ID); !errors.Is(err, gorm.ErrForeignKeyViolated) {
		t.Fatalf("expected category delete to be restricted, got %v", err)
	}

	if _, err := NewTaskRepository(db).Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := NewUserRepository(db).Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete user after task removal: %v", err)
	}
}

func TestCategoryRepositoryUpdate(t *testing.T) {
	db := newTestDB(t)
	_, category := seed(t, db)
	repo := NewCategoryRepository(db)

	updated, err := repo.Update(context.Background(), category.ID, map[string]interface{}{"name": "Home"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Home" {
		t.Fatalf("expected renamed category, got %q", updated.Name)
	}
	if _, err := repo.Update(context.Background(), category.ID+1, map[string]interface{}{"name": "x"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWithPragmas(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{dsn: "app.db", want: "app.db?_foreign_keys=on&_busy_timeout=5000"},
		{dsn: "file:app.db?cache=shared", want: "file:app.db?cache=shared&_foreign_keys=on&_busy_timeout=5000"},
		{dsn: "app.db?_fk=1&_busy_timeout=100", want: "app.db?_fk=1&_busy_timeout=100"},
	}
	for _, tt := range tests {
		if got := withPragmas(tt.dsn); got != tt.want {
			t.Errorf("withPragmas(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}
