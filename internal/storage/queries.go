package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type ProductDatum struct {
	ID           int64
	ProductID    int64
	ProductName  string
	Category     string
	Price        decimal.NullDecimal
	QuantitySold sql.NullInt64
	Rating       sql.NullFloat64
	ReviewCount  int64
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	// CreatedAt is stored as unix seconds.
	CreatedAt int64
}

const deleteAllProductData = `DELETE FROM product_data`

func (q *Queries) DeleteAllProductData(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllProductData)
	return err
}

const insertProductData = `INSERT INTO product_data (
    product_id, product_name, category, price, quantity_sold, rating, review_count
) VALUES (?, ?, ?, ?, ?, ?, ?)`

type InsertProductDataParams struct {
	ProductID    int64
	ProductName  string
	Category     string
	Price        decimal.NullDecimal
	QuantitySold sql.NullInt64
	Rating       sql.NullFloat64
	ReviewCount  int64
}

// PrepareInsertProductData returns a statement for bulk inserts within one transaction.
func (q *Queries) PrepareInsertProductData(ctx context.Context) (*sql.Stmt, error) {
	return q.db.PrepareContext(ctx, insertProductData)
}

func ExecInsertProductData(ctx context.Context, stmt *sql.Stmt, arg InsertProductDataParams) error {
	_, err := stmt.ExecContext(ctx,
		arg.ProductID,
		arg.ProductName,
		arg.Category,
		arg.Price,
		arg.QuantitySold,
		arg.Rating,
		arg.ReviewCount,
	)
	return err
}

const listProductData = `SELECT id, product_id, product_name, category, price, quantity_sold, rating, review_count
FROM product_data
ORDER BY id`

func (q *Queries) ListProductData(ctx context.Context) ([]ProductDatum, error) {
	rows, err := q.db.QueryContext(ctx, listProductData)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProductDatum
	for rows.Next() {
		var i ProductDatum
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.ProductName,
			&i.Category,
			&i.Price,
			&i.QuantitySold,
			&i.Rating,
			&i.ReviewCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countProductData = `SELECT COUNT(*) FROM product_data`

func (q *Queries) CountProductData(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProductData)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createUser = `INSERT INTO users (username, password_hash) VALUES (?, ?)
RETURNING id, username, password_hash, created_at`

type CreateUserParams struct {
	Username     string
	PasswordHash string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.PasswordHash)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getUserByUsername = `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash, &i.CreatedAt)
	return i, err
}
