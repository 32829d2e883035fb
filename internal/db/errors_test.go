package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert subcategory: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(wrapped) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation reported as unique violation")
	}
	if !IsUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Error("expected gorm duplicated key to count")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error reported as unique violation")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)) {
		t.Error("expected wrapped not found")
	}
	if IsNotFound(errors.New("x")) {
		t.Error("plain error reported as not found")
	}
}
