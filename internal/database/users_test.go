// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package database

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/beaconhq/beacon/internal/logging"
)

func testDB(t *testing.T, w io.Writer) *DB {
	t.Helper()

	registry := logging.NewTestRegistry(w)
	cfg := logging.DefaultConfig()
	cfg.SQLLogging = true
	cfg.SQLQueries = true
	cfg.SlowQueryThreshold = time.Second

	db, err := Open("", registry, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func TestUserCRUD(t *testing.T) {
	t.Parallel()

	db := testDB(t, io.Discard)
	ctx := context.Background()

	created, err := db.CreateUser(ctx, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == 0 {
		t.Error("created user has zero ID")
	}
	if created.Name != "Alice" || created.Email != "alice@example.com" {
		t.Errorf("created user = %+v", created)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("created user has zero timestamps")
	}

	got, err := db.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != created.Email {
		t.Errorf("GetUser email = %q, want %q", got.Email, created.Email)
	}

	updated, err := db.UpdateUser(ctx, created.ID, "Alice B", "aliceb@example.com")
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Name != "Alice B" || updated.Email != "aliceb@example.com" {
		t.Errorf("updated user = %+v", updated)
	}

	if err := db.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := db.GetUser(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser after delete error = %v, want ErrNotFound", err)
	}
}

func TestUserNotFound(t *testing.T) {
	t.Parallel()

	db := testDB(t, io.Discard)
	ctx := context.Background()

	if _, err := db.GetUser(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser error = %v, want ErrNotFound", err)
	}
	if _, err := db.UpdateUser(ctx, 9999, "x", "x@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUser error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteUser(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteUser error = %v, want ErrNotFound", err)
	}
}

func TestDuplicateEmail(t *testing.T) {
	t.Parallel()

	db := testDB(t, io.Discard)
	ctx := context.Background()

	if _, err := db.CreateUser(ctx, "Alice", "dup@example.com"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := db.CreateUser(ctx, "Bob", "dup@example.com"); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("CreateUser duplicate error = %v, want ErrDuplicateEmail", err)
	}
}

func TestListUsersPagination(t *testing.T) {
	t.Parallel()

	db := testDB(t, io.Discard)
	ctx := context.Background()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range emails {
		if _, err := db.CreateUser(ctx, "User", email); err != nil {
			t.Fatalf("CreateUser(%s): %v", email, err)
		}
	}

	page, err := db.ListUsers(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("first page length = %d, want 2", len(page))
	}

	rest, err := db.ListUsers(ctx, 10, 2)
	if err != nil {
		t.Fatalf("ListUsers offset: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("second page length = %d, want 1", len(rest))
	}

	count, err := db.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 3 {
		t.Errorf("CountUsers = %d, want 3", count)
	}
}

func TestSQLLoggingEmitsDebugEvents(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	db := testDB(t, &buf)
	ctx := context.Background()

	if _, err := db.CreateUser(ctx, "Alice", "log@example.com"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "sql statement") {
		t.Error("SQL logging enabled but no sql statement events emitted")
	}
	if !strings.Contains(out, "INSERT INTO users") {
		t.Error("sql statement event missing query text")
	}
	if !strings.Contains(out, "log@example.com") {
		t.Error("argument logging enabled but args missing from event")
	}
}
