package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"shopadmin/internal/auth"
	"shopadmin/internal/config"
	"shopadmin/internal/entity"
	"shopadmin/internal/model/modeltest"
)

const testJWTSecret = "middleware-test-secret"

func newTestHandler(t *testing.T) (*HTTPHandler, *modeltest.FakeRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := modeltest.NewFakeRepository()
	cfg := config.Config{
		AppEnv:               "development",
		JWTSecret:            testJWTSecret,
		JWTIssuer:            "test",
		JWTExpirationMinutes: 60,
		JWTLongLivedDays:     30,
		StoragePublicBaseURL: "/files",
	}
	handler, err := NewHTTPHandler(cfg, repo, nil)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return handler, repo
}

func seedUser(t *testing.T, repo *modeltest.FakeRepository, username, email, password, role string, active bool) *entity.DbUser {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &entity.DbUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func sessionTokenFor(t *testing.T, handler *HTTPHandler, user *entity.DbUser) string {
	t.Helper()
	token, _, err := handler.authManager.GenerateSessionToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func expiredTokenFor(t *testing.T, userID uint) string {
	t.Helper()
	now := time.Now().UTC()
	claims := auth.Claims{
		UserID: userID,
		Kind:   auth.TokenKindSession,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newProtectedRouter(handler *HTTPHandler) *gin.Engine {
	r := gin.New()
	r.GET("/protected", handler.AuthMiddleware(), func(c *gin.Context) {
		principal := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"username": principal.Username})
	})
	r.GET("/admin-only", handler.AuthMiddleware(), handler.RequireAdmin(), func(c *gin.Context) {
		admin := CurrentAdmin(c)
		c.JSON(http.StatusOK, gin.H{"role": admin.Role})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := newProtectedRouter(handler)

	activeUser := seedUser(t, repo, "johndoe", "john@example.com", "password1", entity.UserRoleUser, true)
	inactiveUser := seedUser(t, repo, "blocked", "blocked@example.com", "password1", entity.UserRoleUser, false)
	deletedUser := seedUser(t, repo, "ghost", "ghost@example.com", "password1", entity.UserRoleUser, true)
	deletedToken := sessionTokenFor(t, handler, deletedUser)
	if err := repo.DeleteUser(context.Background(), deletedUser.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "缺少请求头",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   ErrCodeUnauthorized,
		},
		{
			name:           "非Bearer格式",
			header:         "Token abc",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   ErrCodeUnauthorized,
		},
		{
			name:           "空令牌",
			header:         "Bearer   ",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   ErrCodeUnauthorized,
		},
		{
			name:           "伪造令牌",
			header:         "Bearer not-a-real-token",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   ErrCodeInvalidToken,
		},
		{
			name:           "过期令牌",
			header:         "Bearer " + expiredTokenFor(t, activeUser.ID),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   ErrCodeTokenExpired,
		},
		{
			name:           "用户已删除",
			header:         "Bearer " + deletedToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   ErrCodeUserNotFound,
		},
		{
			name:           "账号已停用",
			header:         "Bearer " + sessionTokenFor(t, handler, inactiveUser),
			expectedStatus: http.StatusForbidden,
			expectedCode:   ErrCodeUserDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.expectedCode {
				t.Fatalf("expected code %s, got %s", tt.expectedCode, response.Code)
			}
		})
	}

	t.Run("有效令牌放行并注入用户", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+sessionTokenFor(t, handler, activeUser))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body %s)", w.Code, w.Body.String())
		}
		var response map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if response["username"] != "johndoe" {
			t.Fatalf("expected username johndoe, got %q", response["username"])
		}
	})

	t.Run("长效令牌同样可用", func(t *testing.T) {
		token, _, err := handler.authManager.GenerateAPIToken(activeUser.ID)
		if err != nil {
			t.Fatalf("failed to generate api token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body %s)", w.Code, w.Body.String())
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := newProtectedRouter(handler)

	regular := seedUser(t, repo, "johndoe", "john@example.com", "password1", entity.UserRoleUser, true)
	admin := seedUser(t, repo, "boss", "boss@example.com", "password1", entity.UserRoleAdmin, true)

	t.Run("普通用户被拒绝", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+sessionTokenFor(t, handler, regular))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d (body %s)", w.Code, w.Body.String())
		}
		var response APIError
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if response.Code != ErrCodeForbidden {
			t.Fatalf("expected code %s, got %s", ErrCodeForbidden, response.Code)
		}
	})

	t.Run("管理员放行", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+sessionTokenFor(t, handler, admin))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body %s)", w.Code, w.Body.String())
		}
	})

	t.Run("降级后立即失去权限", func(t *testing.T) {
		token := sessionTokenFor(t, handler, admin)
		role := entity.UserRoleUser
		if err := repo.UpdateUser(context.Background(), admin.ID, entity.UserUpdates{Role: &role}); err != nil {
			t.Fatalf("failed to demote admin: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d (body %s)", w.Code, w.Body.String())
		}
	})
}
