// Package history keeps previously uploaded archives so they can be run
// again without re-uploading.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/ziprun/internal/db"
)

// DefaultName is used for uploads that carry no file name.
const DefaultName = "untitled.zip"

// Meta describes a stored archive. Times are Unix milliseconds.
type Meta struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	LastModified int64  `json:"lastModified"`
	CreatedAt    int64  `json:"createdAt"`
}

// Upload is an archive to be saved.
type Upload struct {
	Name         string
	LastModified time.Time
	Data         []byte
}

// ID derives the identifier of an archive from its metadata. Saving an
// archive with the same name, size and modification time replaces the
// earlier copy.
func ID(name string, size, lastModified int64) string {
	return fmt.Sprintf("%s-%d-%d", name, size, lastModified)
}

// Store provides archive history operations.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Save stores up and returns its metadata.
func (s *Store) Save(ctx context.Context, up Upload) (*Meta, error) {
	name := up.Name
	if name == "" {
		name = DefaultName
	}
	now := s.now()
	lastModified := up.LastModified
	if lastModified.IsZero() {
		lastModified = now
	}

	meta := &Meta{
		Name:         name,
		Size:         int64(len(up.Data)),
		LastModified: lastModified.UnixMilli(),
		CreatedAt:    now.UnixMilli(),
	}
	meta.ID = ID(meta.Name, meta.Size, meta.LastModified)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO archives (id, name, size, last_modified, created_at, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			size = excluded.size,
			last_modified = excluded.last_modified,
			created_at = excluded.created_at,
			data = excluded.data`,
		meta.ID, meta.Name, meta.Size, meta.LastModified, meta.CreatedAt, up.Data,
	)
	if err != nil {
		return nil, fmt.Errorf("saving archive %s: %w", meta.ID, err)
	}
	return meta, nil
}

// List returns all stored archives, newest first.
func (s *Store) List(ctx context.Context) ([]Meta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, size, last_modified, created_at
		FROM archives ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing archives: %w", err)
	}
	defer rows.Close()

	metas := []Meta{}
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.Name, &m.Size, &m.LastModified, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning archive: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Get returns the metadata of one archive. ok is false if id is unknown.
func (s *Store) Get(ctx context.Context, id string) (meta *Meta, ok bool, err error) {
	var m Meta
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, size, last_modified, created_at
		FROM archives WHERE id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.Size, &m.LastModified, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting archive %s: %w", id, err)
	}
	return &m, true, nil
}

// Load returns the bytes of one archive. ok is false if id is unknown.
func (s *Store) Load(ctx context.Context, id string) (data []byte, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT data FROM archives WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading archive %s: %w", id, err)
	}
	return data, true, nil
}

// Delete removes an archive. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM archives WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting archive %s: %w", id, err)
	}
	return nil
}
