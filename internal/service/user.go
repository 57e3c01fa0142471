package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{2,32}$`)
	colorPattern    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

type UserService struct {
	store  *repository.Store
	logger *logrus.Logger
}

func NewUserService(store *repository.Store, logger *logrus.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// NewUser is the account an admin creates.
type NewUser struct {
	Username    string
	Password    string
	DisplayName string
	Role        models.Role
	Color       string
}

// CreateUser adds an account with a bcrypt password hash. Admin only.
func (s *UserService) CreateUser(ctx context.Context, actor *models.User, in NewUser) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.create(ctx, in)
}

func (s *UserService) create(ctx context.Context, in NewUser) (*models.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	if in.Color == "" {
		in.Color = "#3b82f6"
	}

	switch {
	case !usernamePattern.MatchString(in.Username):
		return nil, fmt.Errorf("%w: username must be 2-32 of a-z 0-9 . _ -", ErrInvalidUser)
	case in.DisplayName == "":
		return nil, fmt.Errorf("%w: display name is required", ErrInvalidUser)
	case !in.Role.Valid():
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, in.Role)
	case !colorPattern.MatchString(in.Color):
		return nil, fmt.Errorf("%w: color must look like #3b82f6", ErrInvalidUser)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		Role:         in.Role,
		Color:        in.Color,
		Active:       true,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, translateDuplicate(err, ErrUserExists)
	}
	return user, nil
}

// Authenticate checks the credentials of an active user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("username", user.Username).Warn("Failed login attempt")
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return user, nil
}

// LinkChat binds a Telegram chat to the account; it becomes the notification address.
// A chat linked to another account is moved over.
func (s *UserService) LinkChat(ctx context.Context, userID uint, chatID int64) (*models.User, error) {
	var user *models.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		user, err = tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}

		previous, err := tx.Users.GetByChatID(ctx, chatID)
		if err != nil {
			return err
		}
		if previous != nil && previous.ID != user.ID {
			previous.ChatID = nil
			if err := tx.Users.Update(ctx, previous); err != nil {
				return err
			}
		}

		user.ChatID = &chatID
		return tx.Users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"chat_id": chatID,
	}).Info("Chat linked to user")
	return user, nil
}

// ChangePassword sets a new password. Users may change their own, admins anyone's.
func (s *UserService) ChangePassword(ctx context.Context, actor *models.User, userID uint, password string) error {
	if !actor.IsAdmin() && actor.ID != userID {
		return ErrForbidden
	}

	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.store.Users.Update(ctx, user)
}

// Deactivate hides the user from rosters and logins. History is kept. Admin only.
func (s *UserService) Deactivate(ctx context.Context, actor *models.User, userID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == userID {
		return fmt.Errorf("%w: admins cannot deactivate themselves", ErrForbidden)
	}

	if err := s.store.Users.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id": actor.ID,
		"user_id":  userID,
	}).Info("User deactivated")
	return nil
}

func (s *UserService) ListActive(ctx context.Context) ([]models.User, error) {
	return s.store.Users.ListActive(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetByChatID returns the active user linked to the chat, or nil.
func (s *UserService) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	user, err := s.store.Users.GetByChatID(ctx, chatID)
	if err != nil || user == nil || !user.Active {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin seeds the first admin account when no active admin exists.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string, chatID int64) (*models.User, error) {
	count, err := s.store.Users.CountAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	admin, err := s.create(ctx, NewUser{
		Username:    username,
		Password:    password,
		DisplayName: "Administrator",
		Role:        models.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	if chatID != 0 {
		if admin, err = s.LinkChat(ctx, admin.ID, chatID); err != nil {
			return nil, err
		}
	}

	s.logger.WithField("username", admin.Username).Info("Initial admin created")
	return admin, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must have at least %d characters", ErrInvalidUser, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
