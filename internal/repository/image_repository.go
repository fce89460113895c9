package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/greenwork/greenwork-api/internal/model"
)

// ImageRepo stores images inline in the 'images' table as base64
// strings.  List results omit the payload; GetByName includes it.
type ImageRepo struct{ DB *sql.DB }

func NewImageRepo(db *sql.DB) *ImageRepo { return &ImageRepo{DB: db} }

// Create inserts an image and returns its ID.  Data is the base64
// encoded payload and may be empty when only a name placeholder is
// registered.
func (r *ImageRepo) Create(ctx context.Context, name, data string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO images (name, imagescol) VALUES (?,?)", name, data)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an image by id, payload included.
func (r *ImageRepo) GetByID(ctx context.Context, id uint64) (model.Image, error) {
	var img model.Image
	var data sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id_image, name, imagescol FROM images WHERE id_image=?", id).
		Scan(&img.IDImage, &img.Name, &data)
	img.Data = data.String
	return img, err
}

// GetByName fetches an image, payload included.
func (r *ImageRepo) GetByName(ctx context.Context, name string) (model.Image, error) {
	var img model.Image
	var data sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id_image, name, imagescol FROM images WHERE name=? LIMIT 1", name).
		Scan(&img.IDImage, &img.Name, &data)
	img.Data = data.String
	return img, err
}

// List returns image metadata without payloads.
func (r *ImageRepo) List(ctx context.Context) ([]model.Image, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id_image, name FROM images ORDER BY id_image")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	images := make([]model.Image, 0)
	for rows.Next() {
		var img model.Image
		if err := rows.Scan(&img.IDImage, &img.Name); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImagePatch carries optional update fields; nil fields keep their
// stored value.
type ImagePatch struct {
	Name *string
	Data *string
}

// Update applies non-nil patch fields to the image row.
func (r *ImageRepo) Update(ctx context.Context, id uint64, p ImagePatch) error {
	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *p.Name)
	}
	if p.Data != nil {
		sets = append(sets, "imagescol=?")
		args = append(args, *p.Data)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE images SET "+strings.Join(sets, ", ")+" WHERE id_image=?", args...)
	return err
}

// Delete removes an image by id.
func (r *ImageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM images WHERE id_image=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
