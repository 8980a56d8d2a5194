package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domaincabins "cabinrent/internal/domain/cabins"
)

type CabinRepository struct {
	pool *pgxpool.Pool
}

func NewCabinRepository(pool *pgxpool.Pool) *CabinRepository {
	return &CabinRepository{pool: pool}
}

const cabinColumns = `id, name, description, capacity, bedrooms, amenities, images, created_at, updated_at, version`

type imageRow struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Position    int    `json:"position"`
}

func (r *CabinRepository) ByID(ctx context.Context, id domaincabins.CabinID) (*domaincabins.Cabin, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+cabinColumns+` FROM cabins WHERE id = $1`, string(id))
	c, err := scanCabin(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domaincabins.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get cabin: %w", err)
	}
	return c, nil
}

func (r *CabinRepository) List(ctx context.Context) ([]*domaincabins.Cabin, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+cabinColumns+` FROM cabins ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list cabins: %w", err)
	}
	defer rows.Close()
	var out []*domaincabins.Cabin
	for rows.Next() {
		c, err := scanCabin(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan cabin: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	domaincabins.SortByName(out)
	return out, nil
}

// Save inserts version 1 for new cabins and otherwise updates guarded by the
// loaded version.
func (r *CabinRepository) Save(ctx context.Context, c *domaincabins.Cabin) error {
	images, err := encodeImages(c.Images)
	if err != nil {
		return err
	}
	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	q := conn(ctx, r.pool)
	if c.Version == 0 {
		_, err := q.Exec(ctx, `INSERT INTO cabins (`+cabinColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1)`,
			string(c.ID), c.Name, c.Description, c.Capacity, c.Bedrooms, amenities, images, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			if pgCode(err) == codeUniqueViolation {
				return domaincabins.ErrConcurrentUpdate
			}
			return fmt.Errorf("postgres: insert cabin: %w", err)
		}
		c.Version = 1
		return nil
	}
	tag, err := q.Exec(ctx, `UPDATE cabins SET name=$2, description=$3, capacity=$4, bedrooms=$5, amenities=$6, images=$7,
		updated_at=$8, version=version+1 WHERE id=$1 AND version=$9`,
		string(c.ID), c.Name, c.Description, c.Capacity, c.Bedrooms, amenities, images, c.UpdatedAt, c.Version)
	if err != nil {
		return fmt.Errorf("postgres: update cabin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domaincabins.ErrConcurrentUpdate
	}
	c.Version++
	return nil
}

func (r *CabinRepository) Delete(ctx context.Context, id domaincabins.CabinID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM cabins WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("postgres: delete cabin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domaincabins.ErrNotFound
	}
	return nil
}

func scanCabin(row pgx.Row) (*domaincabins.Cabin, error) {
	var (
		c         domaincabins.Cabin
		id        string
		rawImages []byte
		created   time.Time
		updated   time.Time
	)
	if err := row.Scan(&id, &c.Name, &c.Description, &c.Capacity, &c.Bedrooms, &c.Amenities, &rawImages, &created, &updated, &c.Version); err != nil {
		return nil, err
	}
	images, err := decodeImages(rawImages)
	if err != nil {
		return nil, err
	}
	c.ID = domaincabins.CabinID(id)
	c.Images = images
	c.CreatedAt = created.UTC()
	c.UpdatedAt = updated.UTC()
	return &c, nil
}

func encodeImages(refs []domaincabins.ImageRef) ([]byte, error) {
	rows := make([]imageRow, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, imageRow{ID: ref.ID, URL: ref.URL, ContentType: ref.ContentType, Position: ref.Position})
	}
	return json.Marshal(rows)
}

func decodeImages(raw []byte) ([]domaincabins.ImageRef, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []imageRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	out := make([]domaincabins.ImageRef, 0, len(rows))
	for _, row := range rows {
		out = append(out, domaincabins.ImageRef{ID: row.ID, URL: row.URL, ContentType: row.ContentType, Position: row.Position})
	}
	return out, nil
}

var _ domaincabins.Repository = (*CabinRepository)(nil)
