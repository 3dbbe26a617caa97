package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ripple/internal/auth"
	"ripple/internal/config"
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the UserRepository interface.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByGitHubID(ctx context.Context, githubID string) (*models.User, error) {
	args := m.Called(ctx, githubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreateWithProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	args := m.Called(ctx, id, isAdmin)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteCascade(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, username, email string, limit int) ([]models.User, error) {
	args := m.Called(ctx, username, email, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test_secret_for_handler_tests", time.Hour)
}

func newAuthTestServer(mockRepo *MockUserRepository) *Server {
	issuer := testIssuer()
	return &Server{
		config:      &config.Config{JWTSecret: "test_secret_for_handler_tests", TokenTTL: time.Hour},
		tokens:      issuer,
		userRepo:    mockRepo,
		authService: service.NewAuthService(mockRepo, issuer),
	}
}

func TestRegister(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := newAuthTestServer(mockRepo)

	app.Post("/register", s.Register)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "Sup3r-Secret-Pass!",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, nil)
				mockRepo.On("CreateWithProfile", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate Email",
			body: map[string]string{
				"username": "testuser",
				"email":    "exists@example.com",
				"password": "Sup3r-Secret-Pass!",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "exists@example.com").Return(&models.User{ID: 1}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Weak Password",
			body: map[string]string{
				"username": "testuser",
				"email":    "weak@example.com",
				"password": "short",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestLogin(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := newAuthTestServer(mockRepo)

	app.Post("/login", s.Login)

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3r-Secret-Pass!"), bcrypt.MinCost)
	require.NoError(t, err)
	email := "test@example.com"
	mockRepo.On("GetByEmail", mock.Anything, email).
		Return(&models.User{ID: 1, Username: "testuser", Email: &email, Password: string(hash)}, nil)
	mockRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           map[string]string{"email": email, "password": "Sup3r-Secret-Pass!"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wrong Password",
			body:           map[string]string{"email": email, "password": "wrong"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown Email",
			body:           map[string]string{"email": "nobody@example.com", "password": "whatever"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := newAuthTestServer(mockRepo)

	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		userID, isAdmin := currentUser(c)
		return c.JSON(fiber.Map{"user_id": userID, "is_admin": isAdmin})
	})

	token, err := s.tokens.Issue(1, "testuser")
	require.NoError(t, err)
	deletedToken, err := s.tokens.Issue(99, "ghost")
	require.NoError(t, err)

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Username: "testuser", IsAdmin: true}, nil)
	mockRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("User", 99))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{name: "Missing Header", authHeader: "", expectedStatus: http.StatusUnauthorized},
		{name: "Malformed Header", authHeader: "Token abc", expectedStatus: http.StatusUnauthorized},
		{name: "Garbage Token", authHeader: "Bearer not-a-jwt", expectedStatus: http.StatusUnauthorized},
		{name: "Deleted Account", authHeader: "Bearer " + deletedToken, expectedStatus: http.StatusUnauthorized},
		{name: "Valid Token", authHeader: "Bearer " + token, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	t.Run("Admin flag is fetched per request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		var out struct {
			UserID  uint `json:"user_id"`
			IsAdmin bool `json:"is_admin"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, uint(1), out.UserID)
		assert.True(t, out.IsAdmin, "admin flag comes from the database row, not the token")
	})
}

func TestAdminRequired(t *testing.T) {
	app := fiber.New()
	s := &Server{}

	setAdmin := func(isAdmin bool) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals("userID", uint(1))
			c.Locals("isAdmin", isAdmin)
			return c.Next()
		}
	}
	app.Get("/admin-ok", setAdmin(true), s.AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/admin-no", setAdmin(false), s.AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin-ok", nil))
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin-no", nil))
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp2.StatusCode)
}
