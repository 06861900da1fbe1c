package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupUserMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	return NewUserRepo(db), mock, func() { db.Close() }
}

func userRows(id uint64, username, hash string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}).
		AddRow(id, username, hash, now, now)
}

func TestUserCreate(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password_hash) VALUES (?,?)")).
		WithArgs("alice", "digest").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), "alice", "digest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d; want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserCreate_Duplicate(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password_hash) VALUES (?,?)")).
		WithArgs("alice", "digest").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'"))

	_, err := repo.Create(context.Background(), "alice", "digest")
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("error = %v; want ErrUsernameExists", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserByUsername_Found(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,username,password_hash,created_at,updated_at FROM users WHERE username=? LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(userRows(1, "alice", "digest"))

	u, err := repo.ByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil || u.ID != 1 || u.Username != "alice" {
		t.Errorf("user = %+v; want id=1 username=alice", u)
	}
}

func TestUserByUsername_Absent(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,username,password_hash,created_at,updated_at FROM users WHERE username=? LIMIT 1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.ByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Errorf("user = %+v; want nil for absent user", u)
	}
}

func TestUserByID_Found(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,username,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1")).
		WithArgs(uint64(2)).
		WillReturnRows(userRows(2, "bob", "digest"))

	u, err := repo.ByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil || u.Username != "bob" {
		t.Errorf("user = %+v; want bob", u)
	}
}

func TestUserByID_Absent(t *testing.T) {
	repo, mock, cleanup := setupUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,username,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1")).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	u, err := repo.ByID(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Errorf("user = %+v; want nil for absent user", u)
	}
}
