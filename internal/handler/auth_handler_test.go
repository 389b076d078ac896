package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tristudio/studio-scheduler-api/internal/middleware"
	"github.com/tristudio/studio-scheduler-api/internal/models"
	"github.com/tristudio/studio-scheduler-api/internal/service"
	"github.com/tristudio/studio-scheduler-api/pkg/config"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

type stubUserRepo struct {
	users map[string]*models.User
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, appErrors.ErrNotFound
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (s *stubUserRepo) Create(_ context.Context, user models.User) (*models.User, error) {
	user.ID = "user-new"
	return &user, nil
}

func (s *stubUserRepo) TouchLastLogin(context.Context, string) error { return nil }

func buildAuthRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("super-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubUserRepo{users: map[string]*models.User{
		"admin@studio.in": {
			ID:           "user-1",
			Email:        "admin@studio.in",
			PasswordHash: string(hash),
			FullName:     "Studio Admin",
			Role:         models.RoleAdmin,
			Active:       true,
		},
	}}
	auth := service.NewAuthService(repo, nil, config.JWTConfig{Secret: "test-secret", Expiration: time.Hour}, zap.NewNop())

	h := NewAuthHandler(auth)
	router := gin.New()
	router.POST("/auth/login", h.Login)
	router.GET("/auth/me", middleware.JWT(auth), h.Me)
	router.POST("/auth/register", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin), h.Register)
	return router, auth
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@studio.in","password":"super-secret"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func TestAuthLoginAndMe(t *testing.T) {
	router, _ := buildAuthRouter(t)
	token := login(t, router)

	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"user_id":"user-1"`)
}

func TestAuthLoginBadPassword(t *testing.T) {
	router, _ := buildAuthRouter(t)

	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@studio.in","password":"wrong-password"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Contains(t, resp.Body.String(), "INVALID_CREDENTIALS")
}

func TestAuthMeWithoutToken(t *testing.T) {
	router, _ := buildAuthRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRegisterRequiresAdminRole(t *testing.T) {
	router, auth := buildAuthRouter(t)
	token := login(t, router)

	body := `{"email":"viewer@studio.in","password":"super-secret","fullName":"Front Desk","role":"VIEWER"}`
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusCreated, resp.Code)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, claims.Role)

	req, _ = http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp = performRequest(router, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code, "registration is gated behind authentication")
}
