package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/profile-api/internal/database"
)

// columns maps record fields to users table columns
var columns = map[Field]string{
	FieldName:            "name",
	FieldDOB:             "dob",
	FieldEmail:           "email",
	FieldPhoneCode:       "phone_code",
	FieldPhoneNumber:     "phone_number",
	FieldProfileImageURL: "profile_image_url",
	FieldUserType:        "user_type",
	FieldTimestamp:       "timestamp",
}

// immutable fields are set at registration and never merged here
var immutable = map[Field]bool{
	FieldUserType:  true,
	FieldTimestamp: true,
}

// Repository handles profile record persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Get reads one record as a snapshot
func (r *Repository) Get(ctx context.Context, userID string) (Snapshot, error) {
	row := make(map[string]any)
	err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("id = ?", userID).
		Limit(1).
		Scan(ctx, &row)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	snap := make(Snapshot, len(columns))
	for f, col := range columns {
		if v, ok := row[col]; ok {
			snap[f] = v
		}
	}

	return snap, nil
}

// Merge writes only the given fields and leaves every other column as is
func (r *Repository) Merge(ctx context.Context, userID string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}

	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("updated_at = NOW()")

	for _, f := range sortedFields(fields) {
		col, ok := columns[f]
		if !ok || immutable[f] {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		q = q.Set("? = ?", bun.Ident(col), fields[f])
	}

	result, err := q.Where("id = ?", userID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to merge profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
