package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/vigilance-driver/vigilance-go/internal/model"
)

const (
	insertUserQuery = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash\)\s*VALUES\s*\(\?,\s*\?,\s*\?\)$`
	selectUserQuery = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\?$`
)

func newUserRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewUserRepository(db)
	repo.newID = func() string { return "u-1" }
	return repo, mock
}

func TestNewUserRepositoryGeneratesUUIDs(t *testing.T) {
	repo := NewUserRepository(nil)
	a, b := repo.newID(), repo.newID()
	if len(a) != 36 || a == b {
		t.Fatalf("unexpected ids %q, %q", a, b)
	}
}

func TestUserCreate_Success(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(insertUserQuery).
		WithArgs("u-1", "a@x.com", "hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &model.User{Email: "a@x.com", PasswordHash: "hash"}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if user.ID != "u-1" {
		t.Fatalf("user.ID = %q, want %q", user.ID, "u-1")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(insertUserQuery).
		WithArgs("u-1", "a@x.com", "hash").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'uq_users_email'"})

	user := &model.User{Email: "a@x.com", PasswordHash: "hash"}
	err := repo.Create(context.Background(), user)
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("Create error = %v, want %v", err, ErrDuplicateEmail)
	}
	if user.ID != "" {
		t.Fatalf("user.ID should stay empty on failure, got %q", user.ID)
	}
}

func TestUserCreate_DBError(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(insertUserQuery).
		WithArgs("u-1", "a@x.com", "hash").
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &model.User{Email: "a@x.com", PasswordHash: "hash"})
	if err == nil || errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUserGetByEmail_Found(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
		AddRow("u-1", "a@x.com", "hash", created)
	mock.ExpectQuery(selectUserQuery).WithArgs("a@x.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "a@x.com" || got.PasswordHash != "hash" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUserGetByEmail_NoNormalization(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectQuery(selectUserQuery).WithArgs(" A@X.com ").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), " A@X.com ")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetByEmail error = %v, want %v", err, ErrUserNotFound)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUserGetByEmail_DBError(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectQuery(selectUserQuery).WithArgs("a@x.com").WillReturnError(errors.New("db err"))

	_, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err == nil || errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestIsDuplicateEntryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("Duplicate entry"), false},
		{"other mysql error", &mysql.MySQLError{Number: 1146}, false},
		{"duplicate", &mysql.MySQLError{Number: 1062}, true},
		{"wrapped duplicate", fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1062}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateEntryError(tt.err); got != tt.want {
				t.Errorf("isDuplicateEntryError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
