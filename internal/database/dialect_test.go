package database

import (
	"errors"
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "sqlite3" {
			t.Errorf("DriverName() = %v, want sqlite3", got)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "sqlite" {
			t.Errorf("MigrationsSubdir() = %v, want sqlite", got)
		}
	})

	t.Run("DSN keeps writers queued", func(t *testing.T) {
		dsn := dialect.DSN(DialectConfig{Path: "test.db"})
		if !strings.Contains(dsn, "_busy_timeout") || !strings.Contains(dsn, "_txlock=immediate") {
			t.Errorf("DSN() = %v, want busy_timeout and immediate txlock params", dsn)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "postgres" {
			t.Errorf("DriverName() = %v, want postgres", got)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "postgres" {
			t.Errorf("MigrationsSubdir() = %v, want postgres", got)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "mysql" {
			t.Errorf("DriverName() = %v, want mysql", got)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "mysql" {
			t.Errorf("MigrationsSubdir() = %v, want mysql", got)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM memberships WHERE user_id = ?",
			expected: "SELECT * FROM memberships WHERE user_id = ?",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "SELECT * FROM memberships WHERE user_id = ?",
			expected: "SELECT * FROM memberships WHERE user_id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM memberships WHERE user_id = ?",
			expected: "SELECT * FROM memberships WHERE user_id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO memberships (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
			expected: "INSERT INTO memberships (group_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)",
		},
		{
			name:     "PostgreSQL no placeholders",
			dialect:  NewPostgresDialect(),
			query:    "SELECT COUNT(*) FROM family_groups",
			expected: "SELECT COUNT(*) FROM family_groups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.RewriteQuery(tt.query); got != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUpsertInviteCodeQueryRewrites(t *testing.T) {
	// The upsert goes through the same rewrite path as every other
	// query, so the postgres text must come out fully numbered.
	dialect := NewPostgresDialect()
	rewritten := dialect.RewriteQuery(dialect.UpsertInviteCodeQuery())
	if strings.Contains(rewritten, "?") {
		t.Errorf("rewritten upsert still contains ? placeholders: %s", rewritten)
	}
	for _, want := range []string{"$1", "$2", "$3", "$4"} {
		if !strings.Contains(rewritten, want) {
			t.Errorf("rewritten upsert missing %s: %s", want, rewritten)
		}
	}
}

func TestIsUniqueViolationNonDriverErrors(t *testing.T) {
	dialects := []Dialect{NewSQLiteDialect(), NewPostgresDialect(), NewMySQLDialect()}
	plain := errors.New("connection refused")

	for _, d := range dialects {
		if d.IsUniqueViolation(plain) {
			t.Errorf("%s dialect treated a plain error as a unique violation", d.DriverName())
		}
		if d.IsUniqueViolation(nil) {
			t.Errorf("%s dialect treated nil as a unique violation", d.DriverName())
		}
	}
}
