// internal/inquiry/postgres.go
package inquiry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const inquiryColumns = `id, property_id, buyer_id, COALESCE(name, ''), COALESCE(email, ''), message, created_at`

// PostgresStore keeps inquiries in the inquiries table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, inq *Inquiry) error {
	if inq.ID == uuid.Nil {
		inq.ID = uuid.New()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO inquiries (id, property_id, buyer_id, name, email, message)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING created_at`,
		inq.ID, inq.PropertyID, inq.BuyerID, inq.Name, inq.Email, inq.Message,
	).Scan(&inq.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert inquiry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Inquiry, error) {
	var inq Inquiry
	err := s.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, id).
		Scan(&inq.ID, &inq.PropertyID, &inq.BuyerID, &inq.Name, &inq.Email, &inq.Message, &inq.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrInquiryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inquiry: %w", err)
	}
	return &inq, nil
}

func (s *PostgresStore) ListByProperties(ctx context.Context, propertyIDs []int64) ([]Inquiry, error) {
	if len(propertyIDs) == 0 {
		return []Inquiry{}, nil
	}
	return s.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries
		WHERE property_id = ANY($1)
		ORDER BY created_at DESC, id`, pq.Array(propertyIDs))
}

func (s *PostgresStore) ListByBuyer(ctx context.Context, buyerID int64) ([]Inquiry, error) {
	return s.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries
		WHERE buyer_id = $1
		ORDER BY created_at DESC, id`, buyerID)
}

func (s *PostgresStore) list(ctx context.Context, q string, args ...interface{}) ([]Inquiry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inquiries: %w", err)
	}
	defer rows.Close()

	out := []Inquiry{}
	for rows.Next() {
		var inq Inquiry
		if err := rows.Scan(&inq.ID, &inq.PropertyID, &inq.BuyerID, &inq.Name, &inq.Email, &inq.Message, &inq.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inquiry: %w", err)
		}
		out = append(out, inq)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inquiry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete inquiry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrInquiryNotFound, id)
	}
	return nil
}
