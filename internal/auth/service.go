package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grocerease/grocerease-backend/internal/users"
	pkgAuth "github.com/grocerease/grocerease-backend/pkg/auth"
	"github.com/grocerease/grocerease-backend/pkg/config"
	"github.com/grocerease/grocerease-backend/pkg/db"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	"github.com/grocerease/grocerease-backend/pkg/enums"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
	"github.com/grocerease/grocerease-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "Invalid credentials"
	userExistsMessage         = "User already exists"
	userNotFoundMessage       = "User not found"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*users.UserDTO, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	Logout(ctx context.Context, claims *pkgAuth.AccessTokenClaims) error
}

type service struct {
	users       *users.Repository
	tx          db.Transactor
	revocations pkgAuth.RevocationStore
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users          *users.Repository
	Tx             db.Transactor
	Revocations    pkgAuth.RevocationStore
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Clock          func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Revocations == nil {
		return nil, fmt.Errorf("revocation store is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		users:       params.Users,
		tx:          params.Tx,
		revocations: params.Revocations,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
		now:         params.Clock,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := models.NormalizeEmail(req.Email)
	if name == "" || email == "" {
		return nil, pkgerrors.Validation("Name, email and password are required")
	}

	taken, err := s.users.EmailTaken(ctx, email, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}
	if taken {
		return nil, pkgerrors.Validation(userExistsMessage)
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, users.PasswordError(err, s.passwordCfg)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Validation(userExistsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.issue(user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	user.LastLoginAt = &now

	if security.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, req.Password)
	}

	return s.issue(user)
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.load(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*users.UserDTO, error) {
	user, err := s.load(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.Validation("Name cannot be empty")
		}
		user.Name = name
	}
	if req.Email != nil {
		email := models.NormalizeEmail(*req.Email)
		if email != user.Email {
			taken, err := s.users.EmailTaken(ctx, email, user.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
			}
			if taken {
				return nil, pkgerrors.Conflict("Email already in use")
			}
			user.Email = email
		}
	}

	if err := s.users.Save(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Conflict("Email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return users.FromModel(user), nil
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.load(ctx, s.users, userID)
	if err != nil {
		return err
	}
	ok, err := security.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.Validation("Current password is incorrect")
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return users.PasswordError(err, s.passwordCfg)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		user, err := s.load(ctx, repo, userID)
		if err != nil {
			return err
		}
		if details := user.Employee(); details != nil && details.StoreID != nil {
			if err := repo.DetachFromStore(ctx, *details.StoreID, user.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach employee")
			}
		}
		if err := repo.Delete(ctx, user.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NotFound(userNotFoundMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete account")
		}
		return nil
	})
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *service) Logout(ctx context.Context, claims *pkgAuth.AccessTokenClaims) error {
	if claims == nil || claims.ID == "" {
		return pkgerrors.Unauthorized("Invalid token")
	}
	ttl := claims.ExpiresIn(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke token")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := models.NormalizeEmail(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, security.ErrInvalidHash) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	return user, nil
}

// rehash upgrades a legacy bcrypt hash to argon2id. Errors are logged and dropped.
func (s *service) rehash(ctx context.Context, user *models.User, password string) {
	cfg := s.passwordCfg
	// legacy passwords may predate the current minimum length
	cfg.MinLength = 0
	hash, err := security.HashPassword(password, cfg)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.rehash.failed")
		return
	}
	user.PasswordHash = hash
}

func (s *service) issue(user *models.User) (*AuthResponse, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &AuthResponse{Token: token, User: users.FromModel(user)}, nil
}

func (s *service) load(ctx context.Context, repo *users.Repository, id uuid.UUID) (*models.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(userNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
