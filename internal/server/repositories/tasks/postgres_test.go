package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var taskRowColumns = []string{"id", "title", "status", "project_id", "assignee_id", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+tasks\s*\(title,\s*status,\s*project_id,\s*assignee_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*NULLIF\(\$4,\s*0\)\)\s*RETURNING\s+id,\s*created_at\s*$`
	mock.ExpectQuery(q).WithArgs("ship", "pending", int64(3), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), time.Now()))
	mock.ExpectQuery(q).WithArgs("ship", "pending", int64(404), int64(7)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "tasks_project_id_fkey"})

	got, err := repo.Create(context.Background(), &models.Task{Title: "ship", Status: "pending", ProjectID: 3, AssigneeID: 7})
	if err != nil || got.ID != 11 {
		t.Fatalf("Create = %+v, %v", got, err)
	}

	_, err = repo.Create(context.Background(), &models.Task{Title: "ship", Status: "pending", ProjectID: 404, AssigneeID: 7})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*title,\s*status,\s*project_id,\s*COALESCE\(assignee_id,\s*0\),\s*created_at\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(int64(11), "ship", "pending", int64(3), int64(0), time.Now()))
	mock.ExpectQuery(q).WithArgs(int64(12)).WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), 11)
	if err != nil || got.AssigneeID != 0 || got.ProjectID != 3 {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
	if _, err := repo.GetByID(context.Background(), 12); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+tasks\s+WHERE.*assignee_id\s*=\s*\$3\).*LIMIT\s+\$4\s+OFFSET\s+\$5$`
	mock.ExpectQuery(q).WithArgs("", int64(0), int64(7), models.MaxPageLimit, 0).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(int64(1), "a", "pending", int64(3), int64(7), time.Now()).
			AddRow(int64(2), "b", "done", int64(3), int64(7), time.Now()))

	got, err := repo.List(context.Background(), models.TaskFilter{AssigneeID: 7, Page: models.Page{Limit: 500}})
	if err != nil || len(got) != 2 || got[1].Status != "done" {
		t.Fatalf("List = %+v, %v", got, err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+tasks\s+SET\s+title\s*=\s*\$2,\s*status\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,`
	mock.ExpectQuery(q).WithArgs(int64(1), "a2", "done").
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(int64(1), "a2", "done", int64(3), int64(7), time.Now()))
	mock.ExpectQuery(q).WithArgs(int64(2), "x", "y").WillReturnError(sql.ErrNoRows)

	got, err := repo.Update(context.Background(), &models.Task{ID: 1, Title: "a2", Status: "done"})
	if err != nil || got.Title != "a2" {
		t.Fatalf("Update = %+v, %v", got, err)
	}
	if _, err := repo.Update(context.Background(), &models.Task{ID: 2, Title: "x", Status: "y"}); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs(int64(3)).WillReturnError(errors.New("db err"))

	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), 2); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if err := repo.Delete(context.Background(), 3); err == nil {
		t.Fatal("expected db error")
	}
}
