package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FiveXSeven/synergies/internal/model"
)

// ListFilter scopes a publication listing. Filters combine by AND; Search is
// a substring match OR-combined across title, description, location and
// display name.
type ListFilter struct {
	Page   int
	Limit  int
	Type   model.PublicationType
	Search string
	UserID uuid.UUID
}

// OwnerCounts aggregates an owner's publications by type.
type OwnerCounts struct {
	Total      int64
	Reportages int64
	AgroEchos  int64
}

// PublicationRepository defines publication persistence operations.
type PublicationRepository interface {
	Create(ctx context.Context, pub *model.Publication) error
	Update(ctx context.Context, pub *model.Publication) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Publication, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]model.Publication, int64, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (OwnerCounts, error)
}

type publicationRepository struct {
	db *gorm.DB
}

// NewPublicationRepository creates a new publication repository.
func NewPublicationRepository(db *gorm.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

// Create creates a new publication record.
func (r *publicationRepository) Create(ctx context.Context, pub *model.Publication) error {
	return r.db.WithContext(ctx).Create(pub).Error
}

// Update updates an existing publication record.
func (r *publicationRepository) Update(ctx context.Context, pub *model.Publication) error {
	return r.db.WithContext(ctx).Save(pub).Error
}

// FindByID finds a publication by ID.
func (r *publicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Publication, error) {
	var pub model.Publication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pub).Error; err != nil {
		return nil, err
	}
	return &pub, nil
}

// Delete removes a publication row.
func (r *publicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Publication{}).Error
}

// List returns a page of publications matching the filter, newest first,
// along with the total match count.
func (r *publicationRepository) List(ctx context.Context, filter ListFilter) ([]model.Publication, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Publication{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.UserID != uuid.Nil {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			r.db.Where("title LIKE ?", pattern).
				Or("description LIKE ?", pattern).
				Or("location LIKE ?", pattern).
				Or("user_display_name LIKE ?", pattern),
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pubs []model.Publication
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&pubs).Error; err != nil {
		return nil, 0, err
	}
	return pubs, total, nil
}

// IncrementViews unconditionally bumps the view counter in a single atomic
// update and reports how many rows matched.
func (r *publicationRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Publication{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	return res.RowsAffected, res.Error
}

// CountByOwner aggregates publication counts scoped to one owner.
func (r *publicationRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (OwnerCounts, error) {
	var counts OwnerCounts
	base := r.db.WithContext(ctx).Model(&model.Publication{}).Where("user_id = ?", ownerID)

	if err := base.Session(&gorm.Session{}).Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	if err := base.Session(&gorm.Session{}).Where("type = ?", model.TypeReportage).Count(&counts.Reportages).Error; err != nil {
		return counts, err
	}
	if err := base.Session(&gorm.Session{}).Where("type = ?", model.TypeAgroEcho).Count(&counts.AgroEchos).Error; err != nil {
		return counts, err
	}
	return counts, nil
}
