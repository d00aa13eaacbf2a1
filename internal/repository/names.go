package repository

import (
	"context"
	"fmt"
	"time"

	"inkpost/internal/models"

	"gorm.io/gorm"
)

// NameRepository stores tags and categories, both of which are unique names.
type NameRepository interface {
	// FindByName returns the id of the record named exactly name, or gorm.ErrRecordNotFound.
	FindByName(ctx context.Context, kind models.NameKind, name string) (uint, error)
	// Insert creates a record. A concurrent insert of the same name surfaces
	// as a duplicate-key error.
	Insert(ctx context.Context, kind models.NameKind, name string) (uint, error)
	// DeleteUnreferenced removes every record no post links to.
	DeleteUnreferenced(ctx context.Context, kind models.NameKind) (int64, error)
}

type nameRow struct {
	ID        uint
	Name      string
	CreatedAt time.Time
}

type nameRepository struct {
	db *gorm.DB
}

// NewNameRepository creates a new NameRepository
func NewNameRepository(db *gorm.DB) NameRepository {
	return &nameRepository{db: db}
}

func (r *nameRepository) FindByName(ctx context.Context, kind models.NameKind, name string) (uint, error) {
	var row nameRow
	err := r.db.WithContext(ctx).Table(kind.Table()).Select("id").Where("name = ?", name).Take(&row).Error
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *nameRepository) Insert(ctx context.Context, kind models.NameKind, name string) (uint, error) {
	row := nameRow{Name: name, CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Table(kind.Table()).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *nameRepository) DeleteUnreferenced(ctx context.Context, kind models.NameKind) (int64, error) {
	table := kind.Table()
	linkTable, column := kind.LinkTable()
	res := r.db.WithContext(ctx).Exec(fmt.Sprintf(
		"DELETE FROM %s WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s.id)",
		table, linkTable, linkTable, column, table,
	))
	return res.RowsAffected, res.Error
}
