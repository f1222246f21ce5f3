package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront-api/internal/domain"
)

func newUserRepoForTest(t *testing.T) UserRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migrate user: %v", err)
	}
	return NewUserRepository(db)
}

func TestUserCreateAndFind(t *testing.T) {
	repo := newUserRepoForTest(t)
	u := &domain.User{Email: "ada@example.com", Name: "Ada", PasswordHash: "hash", Role: domain.RoleCustomer}
	if err := repo.Create(u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected assigned id")
	}

	byID, err := repo.FindByID(u.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.Email != "ada@example.com" {
		t.Fatalf("email = %q", byID.Email)
	}

	byEmail, err := repo.FindByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("id = %d, want %d", byEmail.ID, u.ID)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo := newUserRepoForTest(t)
	if err := repo.Create(&domain.User{Email: "ada@example.com", Name: "Ada", PasswordHash: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(&domain.User{Email: "ada@example.com", Name: "Other", PasswordHash: "h"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestUserNotFound(t *testing.T) {
	repo := newUserRepoForTest(t)
	if _, err := repo.FindByID(99); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("find by id err = %v", err)
	}
	if _, err := repo.FindByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("find by email err = %v", err)
	}
}

func TestUserUpdate(t *testing.T) {
	repo := newUserRepoForTest(t)
	u := &domain.User{Email: "ada@example.com", Name: "Ada", PasswordHash: "h", Role: domain.RoleCustomer}
	if err := repo.Create(u); err != nil {
		t.Fatalf("create: %v", err)
	}
	u.Role = domain.RoleAdmin
	if err := repo.Update(u); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByID(u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.IsAdmin() {
		t.Fatalf("role = %q, want admin", got.Role)
	}
}
