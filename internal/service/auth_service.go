package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"shopadmin/internal/auth"
	"shopadmin/internal/entity"
	"shopadmin/internal/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minPasswordLength = 6
	minUsernameLength = 3
)

// AuthService 组合密码哈希、令牌签发和用户存储，实现注册、登录、改密等用例。
type AuthService struct {
	repo   model.Repository
	tokens *auth.Manager
}

// NewAuthService creates the auth orchestrator.
func NewAuthService(repo model.Repository, tokens *auth.Manager) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Signup validates and registers a new account. Username and email are
// lowercased before any lookup so uniqueness is case-insensitive. The
// pre-checks against existing accounts are racy by themselves; the unique
// indexes on users.username and users.email are the real invariant, and a
// duplicate-key failure from the store is translated back into the same
// conflict errors the pre-checks produce.
func (s *AuthService) Signup(ctx context.Context, req entity.SignupRequest) (*entity.DbUser, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := req.Password

	if username == "" || email == "" || password == "" {
		return nil, validationError("MISSING_FIELDS", "username, email, and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, validationError("INVALID_EMAIL", "please provide a valid email address")
	}
	if len(password) < minPasswordLength {
		return nil, validationError("PASSWORD_TOO_SHORT", "password must be at least 6 characters long")
	}
	if len(username) < minUsernameLength {
		return nil, validationError("USERNAME_TOO_SHORT", "username must be at least 3 characters long")
	}
	if strings.Contains(username, " ") {
		return nil, validationError("USERNAME_HAS_SPACES", "username cannot contain spaces")
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, conflictError(CodeUsernameTaken, "username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internalError("failed to check username", err)
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, conflictError(CodeEmailTaken, "email already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internalError("failed to check email", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}

	user := &entity.DbUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         entity.UserRoleUser,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发注册撞上唯一索引，按冲突处理而不是内部错误
			if _, lookupErr := s.repo.GetUserByUsername(ctx, username); lookupErr == nil {
				return nil, conflictError(CodeUsernameTaken, "username already exists")
			}
			return nil, conflictError(CodeEmailTaken, "email already in use")
		}
		return nil, internalError("failed to create user", err)
	}

	return user, nil
}

// Login authenticates by email and password and issues a 24h session token.
// A missing account and a wrong password produce the same error so the
// endpoint cannot be used to enumerate users. A deactivated account is
// reported distinctly, which deliberately mirrors the upstream behaviour.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, *entity.DbUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", time.Time{}, nil, validationError("MISSING_FIELDS", "email and password are required")
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, nil, authenticationError(CodeInvalidCredentials, "invalid email or password")
		}
		return "", time.Time{}, nil, internalError("failed to load user", err)
	}

	if !user.IsActive {
		return "", time.Time{}, nil, authorizationError(CodeAccountDeactivated, "account is deactivated, please contact support")
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, authenticationError(CodeInvalidCredentials, "invalid email or password")
	}

	token, expiresAt, err := s.tokens.GenerateSessionToken(user)
	if err != nil {
		return "", time.Time{}, nil, internalError("failed to create session", err)
	}

	return token, expiresAt, user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return validationError("MISSING_FIELDS", "current password and new password are required")
	}
	if len(newPassword) < minPasswordLength {
		return validationError("PASSWORD_TOO_SHORT", "new password must be at least 6 characters long")
	}

	currentHash, err := s.repo.GetUserPasswordHash(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError(CodeUserNotFound, "user not found")
		}
		return internalError("failed to load password hash", err)
	}

	if err := auth.VerifyPassword(currentHash, currentPassword); err != nil {
		return validationError(CodeCurrentPasswordIncorrect, "current password is incorrect")
	}

	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return internalError("failed to hash password", err)
	}

	if err := s.repo.UpdateUserPassword(ctx, userID, newHash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError(CodeUserNotFound, "user not found")
		}
		return internalError("failed to update password", err)
	}
	return nil
}

// Profile returns the non-sensitive view of an account.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*entity.UserProfile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError(CodeUserNotFound, "user not found")
		}
		return nil, internalError("failed to load profile", err)
	}

	return &entity.UserProfile{
		UserID:        user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Phone:         user.Phone,
		EmailVerified: user.EmailVerified,
		IsActive:      user.IsActive,
		CreatedAt:     user.CreatedAt,
	}, nil
}

// UpdateProfile applies partial contact-info changes to an account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, req entity.ProfileUpdateRequest) error {
	updates := entity.UserUpdates{}
	if req.FirstName != nil {
		trimmed := strings.TrimSpace(*req.FirstName)
		updates.FirstName = &trimmed
	}
	if req.LastName != nil {
		trimmed := strings.TrimSpace(*req.LastName)
		updates.LastName = &trimmed
	}
	if req.Phone != nil {
		trimmed := strings.TrimSpace(*req.Phone)
		updates.Phone = &trimmed
	}
	if updates.IsEmpty() {
		return nil
	}

	if err := s.repo.UpdateUser(ctx, userID, updates); err != nil {
		return internalError("failed to update profile", err)
	}
	return nil
}

// IssueAPIToken creates a 30-day integration token for an account.
func (s *AuthService) IssueAPIToken(ctx context.Context, userID uint) (string, time.Time, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, notFoundError(CodeUserNotFound, "user not found")
		}
		return "", time.Time{}, internalError("failed to load user", err)
	}
	if !user.IsActive {
		return "", time.Time{}, authorizationError(CodeAccountDeactivated, "account is deactivated, please contact support")
	}

	token, expiresAt, err := s.tokens.GenerateAPIToken(user.ID)
	if err != nil {
		return "", time.Time{}, internalError("failed to create api token", err)
	}
	return token, expiresAt, nil
}
