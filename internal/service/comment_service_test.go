package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apierrors "github.com/FiveXSeven/synergies/internal/errors"
	"github.com/FiveXSeven/synergies/internal/model"
	"github.com/FiveXSeven/synergies/internal/sanitize"
)

// MockCommentRepository is a mock implementation of CommentRepository.
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPublication(ctx context.Context, publicationID uuid.UUID) ([]model.Comment, error) {
	args := m.Called(ctx, publicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCommentService_Add(t *testing.T) {
	pubID := uuid.New()
	pub := &model.Publication{ID: pubID}

	tests := []struct {
		name        string
		authorName  string
		content     string
		setupMocks  func(*MockPublicationRepository, *MockCommentRepository)
		expectError func(*testing.T, error)
		check       func(*testing.T, *model.Comment)
	}{
		{
			name:       "unknown publication",
			authorName: "Visitor",
			content:    "Nice report",
			setupMocks: func(pubs *MockPublicationRepository, comments *MockCommentRepository) {
				pubs.On("FindByID", mock.Anything, pubID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectError: func(t *testing.T, err error) {
				assert.Equal(t, apierrors.ErrPublicationNotFound, err)
			},
		},
		{
			name:       "blank fields rejected after trimming",
			authorName: "   ",
			content:    "\n\t",
			setupMocks: func(pubs *MockPublicationRepository, comments *MockCommentRepository) {
				pubs.On("FindByID", mock.Anything, pubID).Return(pub, nil)
			},
			expectError: func(t *testing.T, err error) {
				var httpErr *apierrors.HTTPError
				assert.ErrorAs(t, err, &httpErr)
				assert.Len(t, httpErr.Details, 2)
			},
		},
		{
			name:       "oversized content rejected",
			authorName: "Visitor",
			content:    strings.Repeat("a", model.CommentContentMax+1),
			setupMocks: func(pubs *MockPublicationRepository, comments *MockCommentRepository) {
				pubs.On("FindByID", mock.Anything, pubID).Return(pub, nil)
			},
			expectError: func(t *testing.T, err error) {
				var httpErr *apierrors.HTTPError
				assert.ErrorAs(t, err, &httpErr)
				assert.Contains(t, httpErr.Details[0], "content")
			},
		},
		{
			name:       "accented content is bounded by characters not bytes",
			authorName: "Jean",
			content:    strings.Repeat("é", model.CommentContentMax),
			setupMocks: func(pubs *MockPublicationRepository, comments *MockCommentRepository) {
				pubs.On("FindByID", mock.Anything, pubID).Return(pub, nil)
				comments.On("Create", mock.Anything, mock.AnythingOfType("*model.Comment")).Return(nil)
			},
			check: func(t *testing.T, comment *model.Comment) {
				assert.Equal(t, strings.Repeat("é", model.CommentContentMax), comment.Content)
			},
		},
		{
			name:       "accented content over the character bound rejected",
			authorName: strings.Repeat("é", model.CommentAuthorNameMax+1),
			content:    strings.Repeat("é", model.CommentContentMax+1),
			setupMocks: func(pubs *MockPublicationRepository, comments *MockCommentRepository) {
				pubs.On("FindByID", mock.Anything, pubID).Return(pub, nil)
			},
			expectError: func(t *testing.T, err error) {
				var httpErr *apierrors.HTTPError
				assert.ErrorAs(t, err, &httpErr)
				assert.Len(t, httpErr.Details, 2)
				assert.Contains(t, httpErr.Details[0], "authorName")
				assert.Contains(t, httpErr.Details[1], "content")
			},
		},
		{
			name:       "script markup is neutralized before storage",
			authorName: "Visitor",
			content:    `Great <script>document.cookie</script> report`,
			setupMocks: func(pubs *MockPublicationRepository, comments *MockCommentRepository) {
				pubs.On("FindByID", mock.Anything, pubID).Return(pub, nil)
				comments.On("Create", mock.Anything, mock.AnythingOfType("*model.Comment")).Return(nil)
			},
			check: func(t *testing.T, comment *model.Comment) {
				assert.NotContains(t, comment.Content, "<script>")
				assert.NotContains(t, comment.Content, "document.cookie")
				assert.Contains(t, comment.Content, "Great")
				assert.Equal(t, pubID, comment.PublicationID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPubs := new(MockPublicationRepository)
			mockComments := new(MockCommentRepository)
			tt.setupMocks(mockPubs, mockComments)

			service := NewCommentService(mockComments, mockPubs, sanitize.New())
			comment, err := service.Add(context.Background(), pubID, tt.authorName, tt.content)

			if tt.expectError != nil {
				tt.expectError(t, err)
				assert.Nil(t, comment)
			} else {
				assert.NoError(t, err)
				tt.check(t, comment)
			}

			mockPubs.AssertExpectations(t)
			mockComments.AssertExpectations(t)
		})
	}
}

func TestCommentService_Delete(t *testing.T) {
	commentID := uuid.New()

	t.Run("non-admin forbidden", func(t *testing.T) {
		service := NewCommentService(new(MockCommentRepository), new(MockPublicationRepository), sanitize.New())
		err := service.Delete(context.Background(), commentID, model.RoleUser)
		assert.Equal(t, apierrors.ErrAdminRequired, err)
	})

	t.Run("unknown comment", func(t *testing.T) {
		mockComments := new(MockCommentRepository)
		mockComments.On("FindByID", mock.Anything, commentID).Return(nil, gorm.ErrRecordNotFound)

		service := NewCommentService(mockComments, new(MockPublicationRepository), sanitize.New())
		err := service.Delete(context.Background(), commentID, model.RoleAdmin)
		assert.Equal(t, apierrors.ErrCommentNotFound, err)
	})

	t.Run("admin delete succeeds", func(t *testing.T) {
		mockComments := new(MockCommentRepository)
		mockComments.On("FindByID", mock.Anything, commentID).Return(&model.Comment{ID: commentID}, nil)
		mockComments.On("Delete", mock.Anything, commentID).Return(nil)

		service := NewCommentService(mockComments, new(MockPublicationRepository), sanitize.New())
		err := service.Delete(context.Background(), commentID, model.RoleAdmin)
		assert.NoError(t, err)

		mockComments.AssertExpectations(t)
	})
}
