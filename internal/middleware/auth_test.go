package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/FiveXSeven/synergies/internal/auth"
	"github.com/FiveXSeven/synergies/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newContext(t *testing.T, configure func(*http.Request)) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func identityEcho(t *testing.T, wantID uuid.UUID, wantRole string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := GetIdentity(c)
		require.True(t, ok)
		assert.Equal(t, wantID, ident.ID)
		assert.Equal(t, wantRole, ident.Role)
		return c.NoContent(http.StatusOK)
	}
}

func TestSession_Require(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	userID := uuid.New()
	user := &model.User{ID: userID, Role: model.RoleUser}

	t.Run("missing token is unauthenticated", func(t *testing.T) {
		session := NewSession(jwtService, new(MockUserRepository))
		c, _ := newContext(t, nil)

		err := session.Require(identityEcho(t, userID, model.RoleUser))(c)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("garbage token is forbidden", func(t *testing.T) {
		session := NewSession(jwtService, new(MockUserRepository))
		c, _ := newContext(t, func(req *http.Request) {
			req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
		})

		err := session.Require(identityEcho(t, userID, model.RoleUser))(c)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("valid bearer token resolves the user", func(t *testing.T) {
		token, err := jwtService.GenerateToken(userID, model.RoleUser)
		require.NoError(t, err)

		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, userID).Return(user, nil)
		session := NewSession(jwtService, users)

		c, rec := newContext(t, func(req *http.Request) {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		})

		require.NoError(t, session.Require(identityEcho(t, userID, model.RoleUser))(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		users.AssertExpectations(t)
	})

	t.Run("cookie wins over the bearer header", func(t *testing.T) {
		cookieToken, err := jwtService.GenerateToken(userID, model.RoleUser)
		require.NoError(t, err)

		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, userID).Return(user, nil)
		session := NewSession(jwtService, users)

		c, rec := newContext(t, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookieToken})
			req.Header.Set(echo.HeaderAuthorization, "Bearer completely-invalid")
		})

		require.NoError(t, session.Require(identityEcho(t, userID, model.RoleUser))(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("deleted user is forbidden even with a valid token", func(t *testing.T) {
		token, err := jwtService.GenerateToken(userID, model.RoleUser)
		require.NoError(t, err)

		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
		session := NewSession(jwtService, users)

		c, _ := newContext(t, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		})

		err = session.Require(identityEcho(t, userID, model.RoleUser))(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("role changes are observed on the next request", func(t *testing.T) {
		// Token minted before promotion still resolves to the current role.
		token, err := jwtService.GenerateToken(userID, model.RoleUser)
		require.NoError(t, err)

		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Role: model.RoleAdmin}, nil)
		session := NewSession(jwtService, users)

		c, rec := newContext(t, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		})

		require.NoError(t, session.Require(identityEcho(t, userID, model.RoleAdmin))(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	t.Run("rejects a non-admin identity", func(t *testing.T) {
		c, _ := newContext(t, nil)
		c.Set(identityKey, Identity{ID: uuid.New(), Role: model.RoleUser})

		err := RequireAdmin(ok)(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("rejects when no identity is attached", func(t *testing.T) {
		c, _ := newContext(t, nil)

		err := RequireAdmin(ok)(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("passes an admin through", func(t *testing.T) {
		c, rec := newContext(t, nil)
		c.Set(identityKey, Identity{ID: uuid.New(), Role: model.RoleAdmin})

		require.NoError(t, RequireAdmin(ok)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
