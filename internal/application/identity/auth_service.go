package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/auth"
)

// AuthService handles authentication and user management
type AuthService struct {
	userRepo              identity.UserRepository
	auditRepo             audit.AuditLogRepository
	jwtService            *auth.JWTService
	defaultCommissionRate decimal.Decimal
	logger                *zap.Logger
}

// NewAuthService creates a new authentication service. New users start on
// defaultCommissionRate unless their creation request sets one explicitly.
func NewAuthService(
	userRepo identity.UserRepository,
	auditRepo audit.AuditLogRepository,
	jwtService *auth.JWTService,
	defaultCommissionRate decimal.Decimal,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:              userRepo,
		auditRepo:             auditRepo,
		jwtService:            jwtService,
		defaultCommissionRate: defaultCommissionRate,
		logger:                logger,
	}
}

// Login authenticates a user and returns an access token. Failed attempts
// return the same error whether the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("login failed, user not found", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}
	if !user.IsActive {
		s.logger.Warn("login attempt for inactive account", zap.String("username", input.Username))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Warn("login failed, bad password", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	token, expiresAt, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		StoreID:  user.StoreID,
	})
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	if entry, err := audit.NewAuditLog(user.ID, audit.ActionLogin, "User", user.ID.String(),
		"User logged in", input.IP); err == nil {
		if err := s.auditRepo.Append(ctx, entry); err != nil {
			s.logger.Error("failed to write login audit entry", zap.Error(err))
		}
	}

	s.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      ToUserResponse(user),
	}, nil
}

// CreateUser registers a new user. Only global-scope roles may create users.
func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*UserResponse, error) {
	creator, err := s.userRepo.FindByID(ctx, input.CreatedBy)
	if err != nil {
		return nil, err
	}
	if !creator.Role.HasGlobalScope() {
		return nil, shared.ErrForbidden
	}

	if existing, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := identity.NewUser(input.Username, input.Email, string(hash), identity.Role(input.Role))
	if err != nil {
		return nil, err
	}
	if input.StoreID != nil {
		user.AssignStore(*input.StoreID)
	}
	if input.CommissionRate != nil {
		user.CommissionRate = *input.CommissionRate
	} else if s.defaultCommissionRate.IsPositive() {
		user.CommissionRate = s.defaultCommissionRate
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	if entry, err := audit.NewAuditLog(input.CreatedBy, audit.ActionCreate, "User", user.ID.String(),
		"Created user "+user.Username, input.IP); err == nil {
		if err := s.auditRepo.Append(ctx, entry); err != nil {
			s.logger.Error("failed to write audit entry", zap.Error(err))
		}
	}

	response := ToUserResponse(user)
	return &response, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}
