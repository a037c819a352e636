package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func createAccountTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT,
		last_name TEXT,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 0,
		is_email_verified BOOLEAN NOT NULL DEFAULT 0,
		is_staff BOOLEAN NOT NULL DEFAULT 0,
		date_joined DATETIME NOT NULL,
		last_login DATETIME,
		updated_at DATETIME
	);`)
}

func createOneTimeCodeTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE one_time_codes (
		account_id INTEGER PRIMARY KEY,
		code TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`)
}

func createSessionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE outstanding_sessions (
		id TEXT PRIMARY KEY,
		account_id INTEGER NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked BOOLEAN NOT NULL DEFAULT 0,
		revoked_at DATETIME,
		created_at DATETIME NOT NULL
	);`)
}
