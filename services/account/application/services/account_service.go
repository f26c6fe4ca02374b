package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ghuser/crochestock/pkg/logger"
	pkgvalidator "github.com/ghuser/crochestock/pkg/validator"
	accountdomain "github.com/ghuser/crochestock/services/account/domain"
	"github.com/ghuser/crochestock/services/account/domain/models"
	"github.com/ghuser/crochestock/services/account/domain/repositories"
	domainsvcs "github.com/ghuser/crochestock/services/account/domain/services"
)

// AccountService handles local signup and login and keeps user records
// current. Passwords are only ever stored as bcrypt hashes.
type AccountService struct {
	repo        repositories.UserRepository
	ownerUserID string
	log         logger.Logger
	hashCost    int
	now         func() time.Time
	newID       func() string

	// dummyHash is compared against on unknown usernames so that a miss
	// costs the same as a wrong password.
	dummyHash []byte
}

// NewAccountService returns an AccountService. ownerUserID, when set, is
// granted the admin role every time it is upserted.
func NewAccountService(repo repositories.UserRepository, ownerUserID string, log logger.Logger) *AccountService {
	return newAccountService(repo, ownerUserID, log, bcrypt.DefaultCost)
}

func newAccountService(repo repositories.UserRepository, ownerUserID string, log logger.Logger, cost int) *AccountService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("crochestock-dummy-password"), cost)
	return &AccountService{
		repo:        repo,
		ownerUserID: ownerUserID,
		log:         log,
		hashCost:    cost,
		now:         time.Now,
		newID:       func() string { return "user_" + uuid.NewString() },
		dummyHash:   dummy,
	}
}

// Signup creates a local account and returns it. The caller is expected to
// log the new user in.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := pkgvalidator.ValidateInput(&in); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateDisplayName(in.Name); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, accountdomain.ErrUsernameTaken
	} else if !errors.Is(err, accountdomain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           s.newID(),
		Username:     in.Username,
		DisplayName:  in.Name,
		PasswordHash: string(hash),
		LoginMethod:  models.LoginMethodLocal,
		Role:         models.RoleUser,
		CreatedAt:    now,
		LastSignedIn: now,
	}
	if user.ID == s.ownerUserID {
		user.Role = models.RoleAdmin
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and records the sign-in. Unknown usernames
// and wrong passwords both return ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := pkgvalidator.ValidateInput(&in); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, accountdomain.ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		s.log.InfoContext(ctx, "login failed", "reason", "unknown username")
		return nil, accountdomain.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		s.log.InfoContext(ctx, "login failed", "reason", "bad password", "user_id", user.ID)
		return nil, accountdomain.ErrInvalidCredentials
	}

	method := models.LoginMethodLocal
	return s.Upsert(ctx, models.UserUpsert{ID: user.ID, LoginMethod: &method})
}

// Me returns the user id, or ErrUserNotFound.
func (s *AccountService) Me(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Upsert merges u into the stored user, creating it on first touch, and
// stamps LastSignedIn. The owner id always ends up with the admin role.
func (s *AccountService) Upsert(ctx context.Context, u models.UserUpsert) (*models.User, error) {
	if u.ID != "" && u.ID == s.ownerUserID && u.Role == nil {
		admin := models.RoleAdmin
		u.Role = &admin
	}
	if u.LastSignedIn.IsZero() {
		u.LastSignedIn = s.now()
	}
	user, err := s.repo.Upsert(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}
