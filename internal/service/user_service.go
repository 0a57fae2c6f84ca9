package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"net/mail"
	"recipe-service/internal/entity"
	"recipe-service/internal/repository"
	"strconv"
	"strings"
	"time"
)

const (
	maxUsernameLen    = 150
	maxEmailLen       = 254
	minPasswordLen    = 8
	maxPasswordLen    = 72 // bcrypt ignores anything longer
	defaultSessionTTL = 24 * time.Hour
)

type UserStore interface {
	GetUserByID(ctx context.Context, id int) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUsers(ctx context.Context) ([]*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	DeleteUser(ctx context.Context, id int) error
}

// SessionStore must return repository.ErrCacheMiss when no session exists.
type SessionStore interface {
	Save(ctx context.Context, userID int, token string, ttl time.Duration) error
	Get(ctx context.Context, userID int) (string, error)
	Delete(ctx context.Context, userID int) error
}

// RecipeNotifier lets the user service announce the recipes that the
// database removes together with their owner.
type RecipeNotifier interface {
	ListRecipesByUser(ctx context.Context, userID int) ([]*entity.Recipe, error)
	NotifyChanged(ctx context.Context, event string, recipe *entity.Recipe)
}

type JwtCustomClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID reads the user id carried in the subject claim.
func (c *JwtCustomClaims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return id, nil
}

type RegisterInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type UpdateUserInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
}

type UserService struct {
	users    UserStore
	sessions SessionStore
	recipes  RecipeNotifier
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewUserService(users UserStore, sessions SessionStore, recipes RecipeNotifier, secret string, ttl time.Duration) *UserService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &UserService{
		users:    users,
		sessions: sessions,
		recipes:  recipes,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func validateAccount(v *ValidationError, username, email string) {
	checkText(v, "username", username, maxUsernameLen)
	switch {
	case email == "":
		v.add("email", "this field is required")
	case len(email) > maxEmailLen:
		v.add("email", fmt.Sprintf("must be at most %d characters", maxEmailLen))
	default:
		if _, err := mail.ParseAddress(email); err != nil {
			v.add("email", "enter a valid email address")
		}
	}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	username := sanitizeText(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	v := &ValidationError{}
	validateAccount(v, username, email)
	if n := len(input.Password); n < minPasswordLen || n > maxPasswordLen {
		v.add("password", fmt.Sprintf("must be between %d and %d characters", minPasswordLen, maxPasswordLen))
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, &entity.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	return user, nil
}

// Login checks the credentials, issues a signed token and records it as the
// user's live session.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := &JwtCustomClaims{
		Name:  user.Username,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	if err := s.sessions.Save(ctx, user.ID, t, s.ttl); err != nil {
		logger.Error().Err(err).Msgf("Error storing session for user %d", user.ID)
		return "", err
	}

	return t, nil
}

func (s *UserService) Logout(ctx context.Context, userID int) error {
	return s.sessions.Delete(ctx, userID)
}

// ValidateSession accepts token only if it is the session stored at login.
func (s *UserService) ValidateSession(ctx context.Context, userID int, token string) error {
	stored, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCacheMiss) {
			return ErrSessionNotFound
		}
		return err
	}
	if stored != token {
		return ErrSessionNotFound
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.users.GetUsers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, err
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*entity.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error().Err(err).Msgf("Error getting user by ID %d", id)
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actorID, id int, input UpdateUserInput) (*entity.User, error) {
	user, err := s.getUserForSelf(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	username := sanitizeText(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	v := &ValidationError{}
	validateAccount(v, username, email)
	if err := v.orNil(); err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	updated, err := s.users.UpdateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		logger.Error().Err(err).Msgf("Error updating user %d", id)
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes the account. Its recipes go with it through the foreign
// key cascade, so each one is evicted and announced as deleted afterwards.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id int) error {
	if _, err := s.getUserForSelf(ctx, actorID, id); err != nil {
		return err
	}

	recipes, err := s.recipes.ListRecipesByUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting user %d", id)
		return err
	}

	for _, recipe := range recipes {
		s.recipes.NotifyChanged(ctx, EventRecipeDeleted, recipe)
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		logger.Warn().Err(err).Msgf("Error dropping session of deleted user %d", id)
	}
	return nil
}

func (s *UserService) getUserForSelf(ctx context.Context, actorID, id int) (*entity.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsAuthor(user, actorID) {
		return nil, ErrForbidden
	}
	return user, nil
}
