package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"salesreport/internal/core"
	"salesreport/internal/records"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ records.Store   = (*SQLiteRepository)(nil)
	_ records.Counter = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

// sqliteDSN enables WAL so readers keep a consistent snapshot while a
// replace is being written.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReplaceAll implements records.Store. Delete and inserts share one
// transaction, so either the whole batch is visible or none of it.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, recs []core.ProductRecord) error {
	if err := records.ValidateAll(recs); err != nil {
		return err
	}

	start := time.Now()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteAllProductData(ctx); err != nil {
		return fmt.Errorf("delete product data: %w", err)
	}

	stmt, err := q.PrepareInsertProductData(ctx)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range recs {
		err := ExecInsertProductData(ctx, stmt, InsertProductDataParams{
			ProductID:    rec.ProductID,
			ProductName:  rec.ProductName,
			Category:     rec.Category,
			Price:        rec.Price,
			QuantitySold: rec.QuantitySold,
			Rating:       rec.Rating,
			ReviewCount:  rec.ReviewCount,
		})
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Product data replaced",
		"records", len(recs),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// ScanAll implements records.Store.
func (r *SQLiteRepository) ScanAll(ctx context.Context) ([]core.ProductRecord, error) {
	rows, err := r.queries.ListProductData(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product data: %w", err)
	}

	out := make([]core.ProductRecord, len(rows))
	for i, row := range rows {
		out[i] = core.ProductRecord{
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			Category:     row.Category,
			Price:        row.Price,
			QuantitySold: row.QuantitySold,
			Rating:       row.Rating,
			ReviewCount:  row.ReviewCount,
		}
	}
	return out, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountProductData(ctx)
	if err != nil {
		return 0, fmt.Errorf("count product data: %w", err)
	}
	return n, nil
}

// CreateUser stores a new account. A taken username yields core.ErrDuplicateUser.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrDuplicateUser
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", row.ID, "username", row.Username)
	return toCoreUser(row), nil
}

// GetUserByUsername returns core.ErrUserNotFound for unknown usernames.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return toCoreUser(row), nil
}

func toCoreUser(u User) core.User {
	return core.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
