package handlers

import (
	"testing"
	"time"

	"statement-analyzer/internal/models"
	"statement-analyzer/internal/repository"
	"statement-analyzer/internal/service"
	"statement-analyzer/internal/service/mocks"
	"statement-analyzer/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthApp(t *testing.T) (*fiber.App, *mocks.MockUserStore, *auth.JWTManager) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserStore(ctrl)
	jwtManager := auth.NewJWTManager("secret", time.Hour, 24*time.Hour)
	h := NewAuthHandler(service.NewAuthService(users, jwtManager, zap.NewNop()), zap.NewNop())

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Post("/refresh", h.RefreshToken)
	return app, users, jwtManager
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		setup   func(users *mocks.MockUserStore)
		want    int
		errPart string
	}{
		{
			name: "created",
			body: `{"username":"alice","email":"alice@example.com","password":"password1"}`,
			setup: func(users *mocks.MockUserStore) {
				users.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(nil, repository.ErrNotFound)
				users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			want: fiber.StatusCreated,
		},
		{
			name: "duplicate email",
			body: `{"username":"alice","email":"alice@example.com","password":"password1"}`,
			setup: func(users *mocks.MockUserStore) {
				users.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(nil, repository.ErrNotFound)
				users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrDuplicate)
			},
			want:    fiber.StatusConflict,
			errPart: "already exists",
		},
		{
			name:    "short password",
			body:    `{"username":"alice","email":"alice@example.com","password":"short"}`,
			want:    fiber.StatusBadRequest,
			errPart: "invalid registration",
		},
		{
			name:    "malformed body",
			body:    `{"username":`,
			want:    fiber.StatusBadRequest,
			errPart: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, users, _ := newAuthApp(t)
			if tt.setup != nil {
				tt.setup(users)
			}

			resp, err := app.Test(jsonRequest(fiber.MethodPost, "/register", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			body := decode(t, resp)
			if tt.errPart != "" {
				assert.Contains(t, body["error"], tt.errPart)
				return
			}
			assert.NotEmpty(t, body["access_token"])
			assert.Equal(t, "Bearer", body["token_type"])
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("password1")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com", PasswordHash: hash}

	t.Run("valid credentials", func(t *testing.T) {
		app, users, _ := newAuthApp(t)
		users.EXPECT().GetByEmail(gomock.Any(), "bob@example.com").Return(user, nil)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/login", `{"email":"Bob@Example.com","password":"password1"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		app, users, _ := newAuthApp(t)
		users.EXPECT().GetByEmail(gomock.Any(), "bob@example.com").Return(user, nil)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/login", `{"email":"bob@example.com","password":"nope-nope"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid credentials", decode(t, resp)["error"])
	})
}

func TestRefreshToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "bob", Email: "bob@example.com"}

	t.Run("refresh token accepted", func(t *testing.T) {
		app, users, jwtManager := newAuthApp(t)
		refresh, err := jwtManager.GenerateRefreshToken(user.ID.String())
		require.NoError(t, err)
		users.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/refresh", `{"refresh_token":"`+refresh+`"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("access token rejected", func(t *testing.T) {
		app, _, jwtManager := newAuthApp(t)
		access, err := jwtManager.GenerateToken(user.ID.String(), user.Username, user.Email)
		require.NoError(t, err)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/refresh", `{"refresh_token":"`+access+`"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("deleted user", func(t *testing.T) {
		app, users, jwtManager := newAuthApp(t)
		refresh, err := jwtManager.GenerateRefreshToken(user.ID.String())
		require.NoError(t, err)
		users.EXPECT().GetByID(gomock.Any(), user.ID).Return(nil, repository.ErrNotFound)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/refresh", `{"refresh_token":"`+refresh+`"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
