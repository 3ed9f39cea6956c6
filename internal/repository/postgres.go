// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"listing-service/internal/common/logger"

	"github.com/lib/pq"
)

const selectProperties = `
	SELECT p.id, p.agent_id, p.title, COALESCE(p.description, ''), p.price, p.type, p.location,
	       COALESCE(p.bedrooms, 0), COALESCE(p.bathrooms, 0), COALESCE(p.area, 0), p.created_at,
	       COALESCE(array_agg(ph.photo_url ORDER BY ph.id) FILTER (WHERE ph.photo_url IS NOT NULL), '{}')
	FROM properties p
	LEFT JOIN property_photos ph ON ph.property_id = p.id`

// PostgresRepository stores listings in the properties and property_photos tables.
type PostgresRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresRepository(db *sql.DB, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: log}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Property, error) {
	return r.query(ctx, selectProperties+`
	GROUP BY p.id
	ORDER BY p.created_at DESC, p.id DESC`)
}

func (r *PostgresRepository) ListByAgent(ctx context.Context, agentID int64) ([]Property, error) {
	return r.query(ctx, selectProperties+`
	WHERE p.agent_id = $1
	GROUP BY p.id
	ORDER BY p.created_at DESC, p.id DESC`, agentID)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Property, error) {
	props, err := r.query(ctx, selectProperties+`
	WHERE p.id = $1
	GROUP BY p.id`, id)
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return &props[0], nil
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...interface{}) ([]Property, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	out := []Property{}
	for rows.Next() {
		var p Property
		var photos pq.StringArray
		if err := rows.Scan(
			&p.ID, &p.AgentID, &p.Title, &p.Description, &p.Price, &p.Type, &p.Location,
			&p.Bedrooms, &p.Bathrooms, &p.Area, &p.CreatedAt, &photos,
		); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		p.Photos = []string(photos)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate properties: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *Property) error {
	if err := p.Validate(); err != nil {
		return err
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO properties (agent_id, title, description, price, type, location, bedrooms, bathrooms, area)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at`,
			p.AgentID, p.Title, p.Description, p.Price, p.Type, p.Location, p.Bedrooms, p.Bathrooms, p.Area,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert property: %w", err)
		}
		return insertPhotos(ctx, tx, p.ID, p.Photos)
	})
}

func (r *PostgresRepository) Update(ctx context.Context, agentID int64, p *Property) error {
	if err := p.Validate(); err != nil {
		return err
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkOwner(ctx, tx, agentID, p.ID); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, `
			UPDATE properties
			SET title = $2, description = $3, price = $4, type = $5, location = $6,
			    bedrooms = $7, bathrooms = $8, area = $9
			WHERE id = $1
			RETURNING agent_id, created_at`,
			p.ID, p.Title, p.Description, p.Price, p.Type, p.Location, p.Bedrooms, p.Bathrooms, p.Area,
		).Scan(&p.AgentID, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to update property: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM property_photos WHERE property_id = $1`, p.ID); err != nil {
			return fmt.Errorf("failed to clear photos: %w", err)
		}
		return insertPhotos(ctx, tx, p.ID, p.Photos)
	})
}

func (r *PostgresRepository) Delete(ctx context.Context, agentID, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkOwner(ctx, tx, agentID, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete property: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) Save(ctx context.Context, props []Property) error {
	if len(props) == 0 {
		return nil
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		for i := range props {
			p := props[i]
			if err := p.Validate(); err != nil {
				return fmt.Errorf("property %d: %w", p.ID, err)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO properties (id, agent_id, title, description, price, type, location, bedrooms, bathrooms, area, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (id) DO UPDATE SET
					agent_id = EXCLUDED.agent_id, title = EXCLUDED.title, description = EXCLUDED.description,
					price = EXCLUDED.price, type = EXCLUDED.type, location = EXCLUDED.location,
					bedrooms = EXCLUDED.bedrooms, bathrooms = EXCLUDED.bathrooms, area = EXCLUDED.area`,
				p.ID, p.AgentID, p.Title, p.Description, p.Price, p.Type, p.Location, p.Bedrooms, p.Bathrooms, p.Area, p.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert property %d: %w", p.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM property_photos WHERE property_id = $1`, p.ID); err != nil {
				return fmt.Errorf("failed to clear photos: %w", err)
			}
			if err := insertPhotos(ctx, tx, p.ID, p.Photos); err != nil {
				return err
			}
		}
		// keep BIGSERIAL ahead of explicitly inserted ids
		_, err := tx.ExecContext(ctx, `SELECT setval('properties_id_seq', (SELECT MAX(id) FROM properties))`)
		return err
	})
	if err == nil {
		r.logger.Info("Saved properties", map[string]interface{}{"count": len(props)})
	}
	return err
}

func checkOwner(ctx context.Context, tx *sql.Tx, agentID, id int64) error {
	var owner int64
	err := tx.QueryRowContext(ctx, `SELECT agent_id FROM properties WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to load property owner: %w", err)
	}
	if owner != agentID {
		return fmt.Errorf("%w: listing %d belongs to another agent", ErrForbidden, id)
	}
	return nil
}

func insertPhotos(ctx context.Context, tx *sql.Tx, propertyID int64, photos []string) error {
	if len(photos) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO property_photos (property_id, photo_url)
		SELECT $1, unnest($2::text[])`,
		propertyID, pq.Array(photos),
	)
	if err != nil {
		return fmt.Errorf("failed to insert photos: %w", err)
	}
	return nil
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Warn("Rollback failed", map[string]interface{}{"error": rbErr.Error()})
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
