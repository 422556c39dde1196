package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/domain"
)

const opTimeout = 5 * time.Second

// Store is the durable Postgres persistence adapter for the cart. It keeps
// the same full-list semantics as the file adapter: Save replaces the whole
// cart in one transaction.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to Postgres and makes sure the cart table exists.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		CREATE TABLE IF NOT EXISTS cart_lines (
			product_id BIGINT NOT NULL,
			size       TEXT NOT NULL,
			sku        TEXT NOT NULL,
			title      TEXT NOT NULL,
			price      NUMERIC(12,2) NOT NULL,
			image      TEXT NOT NULL DEFAULT '',
			quantity   INT NOT NULL CHECK (quantity >= 1),
			added_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (product_id, size)
		)
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure cart schema: %w", err)
	}
	return nil
}

func (s *Store) Load() ([]domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT product_id, size, sku, title, price, image, quantity
		FROM cart_lines
		ORDER BY added_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("Failed to query cart lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		var price string

		err := rows.Scan(
			&line.ProductID,
			&line.Size,
			&line.SKU,
			&line.Title,
			&price,
			&line.Image,
			&line.Quantity,
		)
		if err != nil {
			s.logger.Error("Failed to scan cart line", zap.Error(err))
			return nil, err
		}

		line.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("invalid stored price: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (s *Store) Save(lines []domain.CartLine) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin cart transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines`); err != nil {
		s.logger.Error("Failed to clear cart lines", zap.Error(err))
		return err
	}

	query := `
		INSERT INTO cart_lines (product_id, size, sku, title, price, image, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, line := range lines {
		_, err := tx.ExecContext(ctx, query,
			line.ProductID,
			line.Size,
			line.SKU,
			line.Title,
			line.UnitPrice.String(),
			line.Image,
			line.Quantity,
		)
		if err != nil {
			s.logger.Error("Failed to insert cart line", zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}
