package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/trentd187/gym-finder/internal/models"
)

// TokenClaims is the payload of a login token.
// RegisteredClaims.ID (jti) is a fresh UUID per login so two logins within the same
// second still produce different tokens.
type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService registers users and issues/validates login tokens.
type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService returns an AuthService. ttl == 0 issues tokens without an expiry.
func NewAuthService(db *gorm.DB, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{db: db, secret: []byte(secret), ttl: ttl, log: log, now: time.Now}
}

// RegisterResult is returned to the client after a successful registration.
type RegisterResult struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// LoginResult carries the freshly issued token.
type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Register creates a user with a bcrypt-hashed password.
// Duplicate usernames are caught by the unique index, not by a lookup beforehand,
// so two concurrent registrations cannot both succeed.
func (s *AuthService) Register(ctx context.Context, username, password string) (*RegisterResult, error) {
	if username == "" || password == "" {
		return nil, validationError("Username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, validationError("Password must be at most 72 bytes")
		}
		return nil, err
	}

	user := models.User{Username: username, Password: string(hash)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictError("Username already exists")
		}
		return nil, storageError("create user", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return &RegisterResult{ID: user.ID, Username: user.Username}, nil
}

// Login checks the credentials and, on success, stores a new token on the user row,
// replacing the previous one. Nothing is written when the credentials are wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, validationError("Username and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authError("Invalid credentials")
		}
		return nil, storageError("find user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, authError("Invalid credentials")
	}

	issuedAt := s.now()
	token, err := s.signToken(&user, issuedAt)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"token":           token,
			"token_issued_at": issuedAt,
		}).Error
	if err != nil {
		return nil, storageError("store token", err)
	}

	return &LoginResult{Message: "Login successful", Token: token}, nil
}

// Authenticate resolves a token to its user. The signature must verify and the token
// must still be the one stored on the user row; a token replaced by a later login is
// rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, authError("Invalid token")
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, authError("Invalid token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, authError("Invalid token")
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("id = ? AND token = ?", userID, token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authError("Invalid token")
		}
		return nil, storageError("find token", err)
	}
	return &user, nil
}

func (s *AuthService) signToken(user *models.User, issuedAt time.Time) (string, error) {
	claims := TokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(s.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
