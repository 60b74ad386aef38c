package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"cleaning_robot/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

func newUserMock(t *testing.T) (sqlmock.Sqlmock, *repository.UserRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return mock, repository.NewUserRepository(db)
}

func TestUserRepository_Create_ReturnsInsertID(t *testing.T) {
	mock, repo := newUserMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("ann", "hash").
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.Create("ann", "hash")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id != 5 {
		t.Fatalf("expected id 5, got %d", id)
	}
}

func TestUserRepository_Create_ErrorWrapped(t *testing.T) {
	mock, repo := newUserMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("ann", "hash").
		WillReturnError(errors.New("disk I/O error"))

	if _, err := repo.Create("ann", "hash"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestUserRepository_Create_DuplicateUsername(t *testing.T) {
	mock, repo := newUserMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("ann", "hash").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"))

	_, err := repo.Create("ann", "hash")
	if !errors.Is(err, repository.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserRepository_GetByUsername_Found(t *testing.T) {
	mock, repo := newUserMock(t)

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash"}).
		AddRow(3, "ann", "hash")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ann").
		WillReturnRows(rows)

	u, err := repo.GetByUsername("ann")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if u == nil || u.ID != 3 || u.Username != "ann" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestUserRepository_GetByUsername_NotFoundIsNilNil(t *testing.T) {
	mock, repo := newUserMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByUsername("ghost")
	if err != nil {
		t.Fatalf("expected nil error for missing user, got %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil user, got %+v", u)
	}
}
