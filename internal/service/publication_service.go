package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FiveXSeven/synergies/internal/cache"
	apierrors "github.com/FiveXSeven/synergies/internal/errors"
	"github.com/FiveXSeven/synergies/internal/model"
	"github.com/FiveXSeven/synergies/internal/repository"
	"github.com/FiveXSeven/synergies/internal/sanitize"
)

// Listing page bounds.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

const statsCacheTTL = time.Minute

// PublicationInput carries the fields of a new publication. Free text is
// sanitized by the service before persistence.
type PublicationInput struct {
	Title           string
	Description     string
	Content         string
	Location        string
	UserDisplayName string
	Type            model.PublicationType
	EventDate       *time.Time
}

// PublicationPatch carries a partial update. Nil fields are absent and keep
// their prior value; a non-nil pointer to an empty string is an explicit
// overwrite.
type PublicationPatch struct {
	Title       *string
	Description *string
	Content     *string
	Location    *string
	Type        *model.PublicationType
	EventDate   *time.Time
}

// Pagination describes a listing page.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// OwnerStats aggregates one owner's publications.
type OwnerStats struct {
	Total      int64 `json:"total"`
	Reportages int64 `json:"reportages"`
	AgroEchos  int64 `json:"agroEchos"`
}

// FileStore removes stored photo files. Removal is best effort.
type FileStore interface {
	Remove(urls []string)
}

// PublicationService implements publication CRUD, listing and stats.
// Ownership checks live here: Update and Delete compare the requester
// against the stored owner.
type PublicationService interface {
	List(ctx context.Context, filter repository.ListFilter) ([]model.Publication, Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Publication, error)
	Create(ctx context.Context, input PublicationInput, photoURLs []string, ownerID uuid.UUID) (*model.Publication, error)
	Update(ctx context.Context, id uuid.UUID, patch PublicationPatch, newPhotoURLs []string, requesterID uuid.UUID) (*model.Publication, error)
	Delete(ctx context.Context, id uuid.UUID, requesterID uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*OwnerStats, error)
}

type publicationService struct {
	pubs      repository.PublicationRepository
	files     FileStore
	sanitizer *sanitize.Sanitizer
	cache     *cache.Client
}

// NewPublicationService creates a new publication service.
func NewPublicationService(pubs repository.PublicationRepository, files FileStore, sanitizer *sanitize.Sanitizer, cache *cache.Client) PublicationService {
	return &publicationService{
		pubs:      pubs,
		files:     files,
		sanitizer: sanitizer,
		cache:     cache,
	}
}

// List returns a page of publications. Limit is clamped to [1, 100] with a
// default of 10; page floors at 1.
func (s *publicationService) List(ctx context.Context, filter repository.ListFilter) ([]model.Publication, Pagination, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageLimit
	}
	if filter.Limit > MaxPageLimit {
		filter.Limit = MaxPageLimit
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	pubs, total, err := s.pubs.List(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list publications: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return pubs, Pagination{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Get resolves a single publication.
func (s *publicationService) Get(ctx context.Context, id uuid.UUID) (*model.Publication, error) {
	pub, err := s.pubs.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apierrors.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("find publication: %w", err)
	}
	return pub, nil
}

// Create persists a new publication. The owner always comes from the
// authenticated identity, never from client input, and at least one stored
// photo is required.
func (s *publicationService) Create(ctx context.Context, input PublicationInput, photoURLs []string, ownerID uuid.UUID) (*model.Publication, error) {
	if len(photoURLs) == 0 {
		return nil, apierrors.ErrPhotoRequired
	}

	displayName := s.sanitizer.CleanTrimmed(input.UserDisplayName)
	if displayName == "" {
		displayName = "Auteur"
	}

	pub := &model.Publication{
		ID:              uuid.New(),
		Title:           s.sanitizer.CleanTrimmed(input.Title),
		Type:            input.Type,
		Description:     s.sanitizer.CleanTrimmed(input.Description),
		Content:         s.sanitizer.Clean(input.Content),
		Location:        s.sanitizer.CleanTrimmed(input.Location),
		EventDate:       input.EventDate,
		PhotoURLs:       photoURLs,
		UserID:          ownerID,
		UserDisplayName: displayName,
	}

	if err := s.pubs.Create(ctx, pub); err != nil {
		return nil, fmt.Errorf("create publication: %w", err)
	}

	s.invalidateStats(ctx, ownerID)
	return pub, nil
}

// Update merges a patch into an existing publication. Absent fields keep
// their prior value; new photos append to the existing sequence. Only the
// owner may update.
func (s *publicationService) Update(ctx context.Context, id uuid.UUID, patch PublicationPatch, newPhotoURLs []string, requesterID uuid.UUID) (*model.Publication, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != requesterID {
		return nil, apierrors.ErrNotOwner
	}

	if patch.Title != nil {
		existing.Title = s.sanitizer.CleanTrimmed(*patch.Title)
	}
	if patch.Description != nil {
		existing.Description = s.sanitizer.CleanTrimmed(*patch.Description)
	}
	if patch.Content != nil {
		existing.Content = s.sanitizer.Clean(*patch.Content)
	}
	if patch.Location != nil {
		existing.Location = s.sanitizer.CleanTrimmed(*patch.Location)
	}
	if patch.Type != nil {
		existing.Type = *patch.Type
	}
	if patch.EventDate != nil {
		existing.EventDate = patch.EventDate
	}
	existing.PhotoURLs = append(existing.PhotoURLs, newPhotoURLs...)

	if err := s.pubs.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update publication: %w", err)
	}
	return existing, nil
}

// Delete removes a publication row, then best-effort deletes its stored
// photos. A file that fails to delete is logged and leaves the row deletion
// intact. Only the owner may delete.
func (s *publicationService) Delete(ctx context.Context, id uuid.UUID, requesterID uuid.UUID) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != requesterID {
		return apierrors.ErrNotOwner
	}

	if err := s.pubs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete publication: %w", err)
	}

	s.files.Remove(existing.PhotoURLs)
	s.invalidateStats(ctx, requesterID)
	return nil
}

// IncrementViews bumps the view counter. The server performs no
// deduplication; the client debounces repeat views per visitor.
func (s *publicationService) IncrementViews(ctx context.Context, id uuid.UUID) error {
	affected, err := s.pubs.IncrementViews(ctx, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if affected == 0 {
		return apierrors.ErrPublicationNotFound
	}
	return nil
}

func (s *publicationService) statsCacheKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("stats:%s", ownerID.String())
}

// Stats aggregates the owner's publication counts with short-lived caching.
func (s *publicationService) Stats(ctx context.Context, ownerID uuid.UUID) (*OwnerStats, error) {
	if data, _ := s.cache.Get(ctx, s.statsCacheKey(ownerID)); data != nil {
		var cached OwnerStats
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	counts, err := s.pubs.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count publications: %w", err)
	}

	stats := &OwnerStats{
		Total:      counts.Total,
		Reportages: counts.Reportages,
		AgroEchos:  counts.AgroEchos,
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, s.statsCacheKey(ownerID), payload, statsCacheTTL)
	}
	return stats, nil
}

func (s *publicationService) invalidateStats(ctx context.Context, ownerID uuid.UUID) {
	if err := s.cache.Delete(ctx, s.statsCacheKey(ownerID)); err != nil {
		log.Printf("invalidate stats cache for %s: %v", ownerID, err)
	}
}
