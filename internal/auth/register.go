package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/davemorenodev/loungelab-backend/internal/identity"
	"github.com/davemorenodev/loungelab-backend/internal/sizing"
	"github.com/davemorenodev/loungelab-backend/internal/users"
	"github.com/davemorenodev/loungelab-backend/pkg/config"
	"github.com/davemorenodev/loungelab-backend/pkg/db"
	"github.com/davemorenodev/loungelab-backend/pkg/db/models"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
	"github.com/davemorenodev/loungelab-backend/pkg/security"
	"github.com/davemorenodev/loungelab-backend/pkg/square"
)

// RegisterService handles account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest, cartToken string) (*AuthResponse, error)
}

type customerProvisioner interface {
	ProvisionCustomer(ctx context.Context, params square.CustomerCreateParams) (string, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
// Provisioner may be nil; customers are then not mirrored to Square.
type RegisterServiceParams struct {
	DB             *db.Client
	SessionManager sessionManager
	Transitions    transitionPublisher
	Provisioner    customerProvisioner
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Flags          config.FeatureFlagsConfig
	Logger         *logger.Logger
}

type registerService struct {
	db          *db.Client
	session     sessionManager
	transitions transitionPublisher
	provisioner customerProvisioner
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	flags       config.FeatureFlagsConfig
	logger      *logger.Logger
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	if params.Transitions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transition publisher required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &registerService{
		db:          params.DB,
		session:     params.SessionManager,
		transitions: params.Transitions,
		provisioner: params.Provisioner,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		flags:       params.Flags,
		logger:      params.Logger,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest, cartToken string) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if (req.Waist == nil) != (req.Inseam == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "waist and inseam must be provided together")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var user *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		measurementRepo := sizing.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		created, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		user = created

		if req.Waist != nil && req.Inseam != nil {
			if _, err := sizing.Recommend(*req.Waist, *req.Inseam); err != nil {
				return err
			}
			if _, err := measurementRepo.Upsert(ctx, created.ID, *req.Waist, *req.Inseam); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save measurements")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.provisionCustomer(ctx, user)

	now := time.Now().UTC()
	accessToken, refreshToken, err := issueTokens(ctx, s.session, s.jwtCfg, now, user.ID)
	if err != nil {
		return nil, err
	}

	s.transitions.Publish(ctx, identity.Transition{
		Event:     identity.EventSignedIn,
		UserID:    &user.ID,
		CartToken: cartToken,
		At:        now,
	})

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

// provisionCustomer mirrors the account to Square. Best effort; a failure is
// logged and registration still succeeds.
func (s *registerService) provisionCustomer(ctx context.Context, user *models.User) {
	if !s.flags.ProvisionCustomers || s.provisioner == nil {
		return
	}

	customerID, err := s.provisioner.ProvisionCustomer(ctx, square.CustomerCreateParams{
		Email:       user.Email,
		ReferenceID: user.ID.String(),
		Note:        "loungelab storefront account",
	})
	if err != nil {
		logCtx := s.logger.WithUserID(ctx, user.ID.String())
		s.logger.Warn(s.logger.WithField(logCtx, "error", err.Error()), "square customer provisioning failed")
		return
	}

	repo := users.NewRepository(s.db.DB())
	if err := repo.UpdateSquareCustomerID(ctx, user.ID, customerID); err != nil {
		logCtx := s.logger.WithUserID(ctx, user.ID.String())
		s.logger.Warn(s.logger.WithField(logCtx, "error", err.Error()), "persist square customer id failed")
		return
	}
	user.SquareCustomerID = &customerID
}
