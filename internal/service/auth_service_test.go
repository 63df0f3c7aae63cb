package service

import (
	"context"
	"testing"
	"time"

	"shopadmin/internal/auth"
	"shopadmin/internal/entity"
	"shopadmin/internal/model/modeltest"
)

func newTestAuthService(t *testing.T) (*AuthService, *modeltest.FakeRepository) {
	t.Helper()
	repo := modeltest.NewFakeRepository()
	tokens, err := auth.NewManager("test-secret", "test", time.Hour, time.Hour*24*30)
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}
	return NewAuthService(repo, tokens), repo
}

func mustSignup(t *testing.T, svc *AuthService, username, email, password string) *entity.DbUser {
	t.Helper()
	user, err := svc.Signup(context.Background(), entity.SignupRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	return user
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantKind Kind
	}{
		{"缺少字段", "", "a@example.com", "password1", KindValidation},
		{"邮箱格式错误", "johndoe", "not-an-email", "password1", KindValidation},
		{"邮箱缺少域名点号", "johndoe", "john@localhost", "password1", KindValidation},
		{"密码过短", "johndoe", "john@example.com", "12345", KindValidation},
		{"用户名过短", "jo", "john@example.com", "password1", KindValidation},
		{"用户名含空格", "john doe", "john@example.com", "password1", KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestAuthService(t)
			_, err := svc.Signup(context.Background(), entity.SignupRequest{
				Username: tt.username,
				Email:    tt.email,
				Password: tt.password,
			})
			domainErr, ok := AsError(err)
			if !ok {
				t.Fatalf("expected domain error, got %v", err)
			}
			if domainErr.Kind != tt.wantKind {
				t.Fatalf("expected kind %v, got %v", tt.wantKind, domainErr.Kind)
			}
		})
	}
}

func TestSignupNormalisesIdentity(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user := mustSignup(t, svc, "  JohnDoe  ", "  John@Example.COM  ", "password1")
	if user.Username != "johndoe" {
		t.Fatalf("expected lowercased username, got %q", user.Username)
	}
	if user.Email != "john@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Role != entity.UserRoleUser {
		t.Fatalf("expected role user, got %q", user.Role)
	}
	if !user.IsActive {
		t.Fatal("expected new account to be active")
	}
	if user.PasswordHash == "password1" || user.PasswordHash == "" {
		t.Fatal("expected password to be stored hashed")
	}
}

func TestSignupConflicts(t *testing.T) {
	svc, _ := newTestAuthService(t)
	mustSignup(t, svc, "johndoe", "john@example.com", "password1")

	_, err := svc.Signup(context.Background(), entity.SignupRequest{
		Username: "JOHNDOE",
		Email:    "other@example.com",
		Password: "password1",
	})
	domainErr, ok := AsError(err)
	if !ok || domainErr.Code != CodeUsernameTaken {
		t.Fatalf("expected username conflict, got %v", err)
	}

	_, err = svc.Signup(context.Background(), entity.SignupRequest{
		Username: "othername",
		Email:    "John@Example.com",
		Password: "password1",
	})
	domainErr, ok = AsError(err)
	if !ok || domainErr.Code != CodeEmailTaken {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestAuthService(t)
	created := mustSignup(t, svc, "johndoe", "john@example.com", "password1")

	token, expiresAt, user, err := svc.Login(context.Background(), "John@Example.COM", "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected session token")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("expected future expiry")
	}
	if user.ID != created.ID {
		t.Fatalf("expected user %d, got %d", created.ID, user.ID)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, repo := newTestAuthService(t)
	user := mustSignup(t, svc, "johndoe", "john@example.com", "password1")

	t.Run("未知邮箱与错误密码返回同一错误", func(t *testing.T) {
		_, _, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "password1")
		_, _, _, wrongErr := svc.Login(context.Background(), "john@example.com", "wrong-password")

		unknown, ok := AsError(unknownErr)
		if !ok || unknown.Code != CodeInvalidCredentials {
			t.Fatalf("expected invalid credentials for unknown email, got %v", unknownErr)
		}
		wrong, ok := AsError(wrongErr)
		if !ok || wrong.Code != CodeInvalidCredentials {
			t.Fatalf("expected invalid credentials for wrong password, got %v", wrongErr)
		}
		if unknown.Message != wrong.Message {
			t.Fatalf("expected identical messages, got %q vs %q", unknown.Message, wrong.Message)
		}
	})

	t.Run("连续失败不锁定账号", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if _, _, _, err := svc.Login(context.Background(), "john@example.com", "wrong-password"); err == nil {
				t.Fatal("expected login failure")
			}
		}
		if _, _, _, err := svc.Login(context.Background(), "john@example.com", "password1"); err != nil {
			t.Fatalf("expected login to succeed after failed attempts: %v", err)
		}
	})

	t.Run("停用账号返回独立错误", func(t *testing.T) {
		inactive := false
		if err := repo.UpdateUser(context.Background(), user.ID, entity.UserUpdates{IsActive: &inactive}); err != nil {
			t.Fatalf("failed to deactivate user: %v", err)
		}
		_, _, _, err := svc.Login(context.Background(), "john@example.com", "password1")
		domainErr, ok := AsError(err)
		if !ok || domainErr.Code != CodeAccountDeactivated {
			t.Fatalf("expected deactivated error, got %v", err)
		}
		if domainErr.Kind != KindAuthorization {
			t.Fatalf("expected authorization kind, got %v", domainErr.Kind)
		}
	})
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	user := mustSignup(t, svc, "johndoe", "john@example.com", "password1")

	t.Run("缺少字段", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, "", "newpassword")
		if domainErr, ok := AsError(err); !ok || domainErr.Kind != KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("新密码过短", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, "password1", "short")
		if domainErr, ok := AsError(err); !ok || domainErr.Kind != KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("用户不存在", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), 9999, "password1", "newpassword")
		if domainErr, ok := AsError(err); !ok || domainErr.Code != CodeUserNotFound {
			t.Fatalf("expected user not found, got %v", err)
		}
	})

	t.Run("旧密码错误", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), user.ID, "wrong-password", "newpassword")
		if domainErr, ok := AsError(err); !ok || domainErr.Code != CodeCurrentPasswordIncorrect {
			t.Fatalf("expected incorrect password error, got %v", err)
		}
	})

	t.Run("成功后旧密码失效", func(t *testing.T) {
		if err := svc.ChangePassword(context.Background(), user.ID, "password1", "newpassword"); err != nil {
			t.Fatalf("change password failed: %v", err)
		}
		if _, _, _, err := svc.Login(context.Background(), "john@example.com", "password1"); err == nil {
			t.Fatal("expected old password to be rejected")
		}
		if _, _, _, err := svc.Login(context.Background(), "john@example.com", "newpassword"); err != nil {
			t.Fatalf("expected new password to work: %v", err)
		}
	})
}

func TestIssueAPIToken(t *testing.T) {
	svc, repo := newTestAuthService(t)
	user := mustSignup(t, svc, "johndoe", "john@example.com", "password1")

	token, expiresAt, err := svc.IssueAPIToken(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("issue api token failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiresAt.Before(time.Now().Add(time.Hour * 24 * 29)) {
		t.Fatalf("expected long-lived expiry, got %v", expiresAt)
	}

	inactive := false
	if err := repo.UpdateUser(context.Background(), user.ID, entity.UserUpdates{IsActive: &inactive}); err != nil {
		t.Fatalf("failed to deactivate user: %v", err)
	}
	_, _, err = svc.IssueAPIToken(context.Background(), user.ID)
	if domainErr, ok := AsError(err); !ok || domainErr.Code != CodeAccountDeactivated {
		t.Fatalf("expected deactivated error, got %v", err)
	}
}

func TestUpdateProfileTrimsFields(t *testing.T) {
	svc, repo := newTestAuthService(t)
	user := mustSignup(t, svc, "johndoe", "john@example.com", "password1")

	first := "  John "
	phone := " 555-0101 "
	if err := svc.UpdateProfile(context.Background(), user.ID, entity.ProfileUpdateRequest{
		FirstName: &first,
		Phone:     &phone,
	}); err != nil {
		t.Fatalf("update profile failed: %v", err)
	}

	stored, err := repo.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if stored.FirstName != "John" {
		t.Fatalf("expected trimmed first name, got %q", stored.FirstName)
	}
	if stored.Phone != "555-0101" {
		t.Fatalf("expected trimmed phone, got %q", stored.Phone)
	}
}
