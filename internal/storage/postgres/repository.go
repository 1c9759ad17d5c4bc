// Package postgres stores product data and users in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"salesreport/internal/core"
	"salesreport/internal/records"
)

const uniqueViolation = "23505"

var productColumns = []string{
	"product_id", "product_name", "category", "price", "quantity_sold", "rating", "review_count",
}

type Repository struct {
	pool *pgxpool.Pool
}

var (
	_ records.Store   = (*Repository)(nil)
	_ records.Counter = (*Repository)(nil)
)

func NewRepository(ctx context.Context, connString string) (*Repository, error) {
	if err := RunMigrations(connString); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ReplaceAll implements records.Store using COPY inside a single transaction.
func (r *Repository) ReplaceAll(ctx context.Context, recs []core.ProductRecord) error {
	if err := records.ValidateAll(recs); err != nil {
		return err
	}

	start := time.Now()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM product_data"); err != nil {
		return fmt.Errorf("delete product data: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"product_data"}, productColumns,
		pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			rec := recs[i]
			return []any{
				rec.ProductID,
				rec.ProductName,
				rec.Category,
				toNumeric(rec.Price),
				pgtype.Int8{Int64: rec.QuantitySold.Int64, Valid: rec.QuantitySold.Valid},
				pgtype.Float8{Float64: rec.Rating.Float64, Valid: rec.Rating.Valid},
				rec.ReviewCount,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy product data: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Product data replaced",
		"records", len(recs),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// ScanAll implements records.Store.
func (r *Repository) ScanAll(ctx context.Context) ([]core.ProductRecord, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT product_id, product_name, category, price, quantity_sold, rating, review_count
		FROM product_data
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query product data: %w", err)
	}
	defer rows.Close()

	var out []core.ProductRecord
	for rows.Next() {
		var (
			rec    core.ProductRecord
			price  pgtype.Numeric
			qty    pgtype.Int8
			rating pgtype.Float8
		)
		if err := rows.Scan(&rec.ProductID, &rec.ProductName, &rec.Category, &price, &qty, &rating, &rec.ReviewCount); err != nil {
			return nil, fmt.Errorf("scan product data: %w", err)
		}
		rec.Price = fromNumeric(price)
		rec.QuantitySold = sql.NullInt64{Int64: qty.Int64, Valid: qty.Valid}
		rec.Rating = sql.NullFloat64{Float64: rating.Float64, Valid: rating.Valid}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product data: %w", err)
	}
	return out, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM product_data").Scan(&n); err != nil {
		return 0, fmt.Errorf("count product data: %w", err)
	}
	return n, nil
}

func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	err := r.pool.QueryRow(ctx,
		"INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, created_at",
		u.Username, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.User{}, core.ErrDuplicateUser
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User created", "id", u.ID, "username", u.Username)
	return u, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.pool.QueryRow(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = $1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func toNumeric(d decimal.NullDecimal) pgtype.Numeric {
	if !d.Valid {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{Int: d.Decimal.Coefficient(), Exp: d.Decimal.Exponent(), Valid: true}
}

// fromNumeric maps NaN and infinities to null so the aggregator rejects them.
func fromNumeric(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromBigInt(n.Int, n.Exp))
}
