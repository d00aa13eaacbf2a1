package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkpost/internal/database"
	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"

	"gorm.io/gorm"
)

// NameResolver turns tag or category names into record ids, creating
// records that do not exist yet.
type NameResolver struct {
	repo repository.NameRepository
}

func NewNameResolver(repo repository.NameRepository) *NameResolver {
	return &NameResolver{repo: repo}
}

// Resolve returns one id per name, in input order. Repeated names yield
// repeated ids. Names are matched exactly; blank names are rejected before
// anything is written.
func (r *NameResolver) Resolve(ctx context.Context, kind models.NameKind, names []string) ([]uint, error) {
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, models.NewValidationError(fmt.Sprintf("%s name must not be blank", kind))
		}
	}

	ids := make([]uint, 0, len(names))
	seen := make(map[string]uint, len(names))
	for _, name := range names {
		if id, ok := seen[name]; ok {
			ids = append(ids, id)
			continue
		}
		id, err := r.resolveOne(ctx, kind, name)
		if err != nil {
			return nil, err
		}
		seen[name] = id
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *NameResolver) resolveOne(ctx context.Context, kind models.NameKind, name string) (uint, error) {
	id, err := r.repo.FindByName(ctx, kind, name)
	if err == nil {
		observability.NameResolutions.WithLabelValues(string(kind), "found").Inc()
		return id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("find %s %q: %w", kind, name, err)
	}

	id, err = r.repo.Insert(ctx, kind, name)
	if err == nil {
		observability.NameResolutions.WithLabelValues(string(kind), "created").Inc()
		return id, nil
	}
	if !database.IsDuplicateKey(err) {
		return 0, fmt.Errorf("create %s %q: %w", kind, name, err)
	}

	// Another request created the same name between our lookup and insert.
	id, err = r.repo.FindByName(ctx, kind, name)
	if err != nil {
		return 0, fmt.Errorf("refetch %s %q: %w", kind, name, err)
	}
	observability.NameResolutions.WithLabelValues(string(kind), "conflict").Inc()
	return id, nil
}
