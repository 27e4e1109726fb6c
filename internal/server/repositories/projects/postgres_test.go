package projects

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var projectColumns = []string{"id", "title", "owner_id", "created_at"}

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

	q := `(?s)^INSERT\s+INTO\s+projects\s*\(title,\s*owner_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at\s*$`
	mock.ExpectQuery(q).WithArgs("roadmap", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), time.Now()))
	mock.ExpectQuery(q).WithArgs("orphan", int64(99)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "projects_owner_id_fkey"})

	got, err := repo.Create(context.Background(), &models.Project{Title: "roadmap", OwnerID: 7})
	if err != nil || got.ID != 3 {
		t.Fatalf("Create = %+v, %v", got, err)
	}

	_, err = repo.Create(context.Background(), &models.Project{Title: "orphan", OwnerID: 99})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("missing owner should map to not found, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*title,\s*owner_id,\s*created_at\s+FROM\s+projects\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(projectColumns).AddRow(int64(3), "roadmap", int64(7), time.Now()))
	mock.ExpectQuery(q).WithArgs(int64(4)).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs(int64(5)).WillReturnError(errors.New("db err"))

	got, err := repo.GetByID(context.Background(), 3)
	if err != nil || got.OwnerID != 7 {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
	if _, err := repo.GetByID(context.Background(), 4); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), 5); err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*title,\s*owner_id,\s*created_at\s+FROM\s+projects\s+WHERE.*owner_id\s*=\s*\$2\).*LIMIT\s+\$3\s+OFFSET\s+\$4$`
	mock.ExpectQuery(q).WithArgs("", int64(7), 10, 20).
		WillReturnRows(sqlmock.NewRows(projectColumns).AddRow(int64(3), "roadmap", int64(7), time.Now()))

	got, err := repo.List(context.Background(), models.ProjectFilter{OwnerID: 7, Page: models.Page{Limit: 10, Offset: 20}})
	if err != nil || len(got) != 1 || got[0].Title != "roadmap" {
		t.Fatalf("List = %+v, %v", got, err)
	}
}

func TestUpdateTitle(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+projects\s+SET\s+title\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,\s*title,\s*owner_id,\s*created_at$`
	mock.ExpectQuery(q).WithArgs(int64(3), "v2").
		WillReturnRows(sqlmock.NewRows(projectColumns).AddRow(int64(3), "v2", int64(7), time.Now()))
	mock.ExpectQuery(q).WithArgs(int64(4), "v2").WillReturnError(sql.ErrNoRows)

	got, err := repo.UpdateTitle(context.Background(), 3, "v2")
	if err != nil || got.Title != "v2" {
		t.Fatalf("UpdateTitle = %+v, %v", got, err)
	}
	if _, err := repo.UpdateTitle(context.Background(), 4, "v2"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+projects\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), 4); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
