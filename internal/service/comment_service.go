package service

import (
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apierrors "github.com/FiveXSeven/synergies/internal/errors"
	"github.com/FiveXSeven/synergies/internal/model"
	"github.com/FiveXSeven/synergies/internal/repository"
	"github.com/FiveXSeven/synergies/internal/sanitize"
)

// CommentService implements publicly-writable, admin-moderated comments.
type CommentService interface {
	List(ctx context.Context, publicationID uuid.UUID) ([]model.Comment, error)
	Add(ctx context.Context, publicationID uuid.UUID, authorName, content string) (*model.Comment, error)
	Delete(ctx context.Context, id uuid.UUID, requesterRole string) error
}

type commentService struct {
	comments  repository.CommentRepository
	pubs      repository.PublicationRepository
	sanitizer *sanitize.Sanitizer
}

// NewCommentService creates a new comment service.
func NewCommentService(comments repository.CommentRepository, pubs repository.PublicationRepository, sanitizer *sanitize.Sanitizer) CommentService {
	return &commentService{
		comments:  comments,
		pubs:      pubs,
		sanitizer: sanitizer,
	}
}

// List returns a publication's comments, newest first.
func (s *commentService) List(ctx context.Context, publicationID uuid.UUID) ([]model.Comment, error) {
	comments, err := s.comments.ListByPublication(ctx, publicationID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Add creates a comment from any visitor. Both fields are trimmed and
// sanitized; empty or oversized fields reject the request with the specific
// violation.
func (s *commentService) Add(ctx context.Context, publicationID uuid.UUID, authorName, content string) (*model.Comment, error) {
	if _, err := s.pubs.FindByID(ctx, publicationID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apierrors.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("find publication: %w", err)
	}

	authorName = s.sanitizer.CleanTrimmed(authorName)
	content = s.sanitizer.CleanTrimmed(content)

	var details []string
	if authorName == "" {
		details = append(details, "authorName is required")
	} else if utf8.RuneCountInString(authorName) > model.CommentAuthorNameMax {
		details = append(details, fmt.Sprintf("authorName exceeds %d characters", model.CommentAuthorNameMax))
	}
	if content == "" {
		details = append(details, "content is required")
	} else if utf8.RuneCountInString(content) > model.CommentContentMax {
		details = append(details, fmt.Sprintf("content exceeds %d characters", model.CommentContentMax))
	}
	if len(details) > 0 {
		return nil, apierrors.NewHTTPError(http.StatusBadRequest, "invalid comment", details...)
	}

	comment := &model.Comment{
		ID:            uuid.New(),
		PublicationID: publicationID,
		AuthorName:    authorName,
		Content:       content,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment. Only the admin role may delete; moderation is
// the only mutation comments support.
func (s *commentService) Delete(ctx context.Context, id uuid.UUID, requesterRole string) error {
	if requesterRole != model.RoleAdmin {
		return apierrors.ErrAdminRequired
	}

	if _, err := s.comments.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apierrors.ErrCommentNotFound
		}
		return fmt.Errorf("find comment: %w", err)
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
