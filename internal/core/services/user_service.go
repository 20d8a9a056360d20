package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
	"github.com/qodirovs/finance_tracker_app/internal/platform/email"
	"github.com/qodirovs/finance_tracker_app/internal/utils"
)

const (
	// verificationCodeTTL is how long a signup code stays valid.
	verificationCodeTTL = 2 * time.Minute
	// verificationResendThrottle is the minimum wait between code sends.
	verificationResendThrottle = 2 * time.Minute
	// verificationCodeDigits is the length of the emailed code.
	verificationCodeDigits = 4

	// oauthDefaultCurrency is assigned to provider-created accounts that skip
	// the profile completion step; the user can change it afterwards.
	oauthDefaultCurrency = "USD"
)

// userService drives the staged signup flow and user management.
// Local accounts move NEW -> CODE_VERIFIED -> DONE.
type userService struct {
	BaseService
	userRepo           portsrepo.UserRepositoryFacade
	currencyService    portssvc.CurrencySvcFacade
	transactionService portssvc.TransactionSvcFacade
	emailSender        email.Sender
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo portsrepo.UserRepositoryFacade,
	currencyService portssvc.CurrencySvcFacade,
	transactionService portssvc.TransactionSvcFacade,
	emailSender email.Sender,
) portssvc.UserSvcFacade {
	return &userService{
		userRepo:           userRepo,
		currencyService:    currencyService,
		transactionService: transactionService,
		emailSender:        emailSender,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// issueVerificationCode creates and stores a fresh code for the user and mails
// it without blocking the request. A failed delivery only logs; the user can
// always ask for a resend.
func (s *userService) issueVerificationCode(ctx context.Context, user *domain.User) error {
	code, err := utils.GenerateNumericCode(verificationCodeDigits)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	now := time.Now().UTC()
	verification := domain.EmailVerification{
		VerificationID: uuid.NewString(),
		UserID:         user.UserID,
		Email:          user.Email,
		Code:           code,
		ExpiresAt:      now.Add(verificationCodeTTL),
		LastSentAt:     now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     user.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: user.UserID,
		},
	}
	if err := s.userRepo.SaveVerification(ctx, verification); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	sendCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.emailSender.SendVerificationCode(sendCtx, user.Email, code, verificationCodeTTL); err != nil {
			s.LogError(sendCtx, err, "failed to deliver verification code",
				slog.String("user_id", user.UserID))
		}
	}()

	return nil
}

// RegisterUser creates a NEW local user from email and password and emails a
// verification code.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	existing, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email before register: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email is already registered", apperrors.ErrDuplicate)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		AuthProvider: domain.ProviderLocal,
		AuthStatus:   domain.AuthStatusNew,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	user.CreatedBy = user.UserID
	user.LastUpdatedBy = user.UserID

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user in service: %w", err)
	}

	if err := s.issueVerificationCode(ctx, &user); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "user registered, verification pending", slog.String("user_id", user.UserID))
	return &user, nil
}

// ResendVerificationCode issues a fresh code. Throttled to one send per two minutes.
func (s *userService) ResendVerificationCode(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.AuthStatus != domain.AuthStatusNew {
		return fmt.Errorf("%w: user email is already verified", apperrors.ErrConflict)
	}

	active, err := s.userRepo.FindActiveVerification(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to look up active verification: %w", err)
	}
	if active != nil {
		if wait := verificationResendThrottle - time.Since(active.LastSentAt); wait > 0 {
			return fmt.Errorf("%w: wait %d seconds before requesting another code",
				apperrors.ErrConflict, int(wait.Seconds())+1)
		}
	}

	return s.issueVerificationCode(ctx, user)
}

// VerifyEmailCode checks the submitted code and advances the user to CODE_VERIFIED.
func (s *userService) VerifyEmailCode(ctx context.Context, userID string, code string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.AuthStatus != domain.AuthStatusNew {
		return fmt.Errorf("%w: user email is already verified", apperrors.ErrConflict)
	}

	verification, err := s.userRepo.FindActiveVerification(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: no active verification code, request a new one", apperrors.ErrValidation)
		}
		return fmt.Errorf("failed to look up active verification: %w", err)
	}

	now := time.Now().UTC()
	if now.After(verification.ExpiresAt) {
		return fmt.Errorf("%w: verification code has expired, request a new one", apperrors.ErrValidation)
	}
	if verification.Code != code {
		return fmt.Errorf("%w: incorrect verification code", apperrors.ErrValidation)
	}

	if err := s.userRepo.MarkVerificationConsumed(ctx, verification.VerificationID, now); err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}

	user.EmailVerified = true
	user.AuthStatus = domain.AuthStatusCodeVerified
	user.LastUpdatedAt = now
	user.LastUpdatedBy = userID
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return fmt.Errorf("failed to advance user after verification: %w", err)
	}

	s.LogInfo(ctx, "user email verified", slog.String("user_id", userID))
	return nil
}

// CompleteRegistration sets name and default currency and advances to DONE.
func (s *userService) CompleteRegistration(ctx context.Context, userID string, req dto.CompleteRegistrationRequest) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AuthStatus != domain.AuthStatusCodeVerified {
		return nil, fmt.Errorf("%w: email must be verified before completing registration", apperrors.ErrConflict)
	}

	currency, err := s.currencyService.GetCurrencyByCode(ctx, req.DefaultCurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, req.DefaultCurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate currency '%s': %w", req.DefaultCurrencyCode, err)
	}
	if !currency.IsActive {
		return nil, fmt.Errorf("%w: currency '%s' is not active", apperrors.ErrValidation, req.DefaultCurrencyCode)
	}

	now := time.Now().UTC()
	user.Name = req.Name
	user.DefaultCurrencyCode = req.DefaultCurrencyCode
	user.AuthStatus = domain.AuthStatusDone
	user.LastUpdatedAt = now
	user.LastUpdatedBy = userID
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to complete registration: %w", err)
	}

	s.LogInfo(ctx, "user registration completed", slog.String("user_id", userID))
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.FindUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users in service: %w", err)
	}
	return users, nil
}

// authorizeUserAction allows a user to act on their own record, or an admin on anyone's.
func (s *userService) authorizeUserAction(ctx context.Context, targetUserID, requestingUserID string) error {
	if targetUserID == requestingUserID {
		return nil
	}
	requester, err := s.userRepo.FindUserByID(ctx, requestingUserID)
	if err != nil {
		return err
	}
	if !requester.IsAdmin {
		return fmt.Errorf("%w: cannot act on another user's account", apperrors.ErrForbidden)
	}
	return nil
}

// UpdateUser updates an existing user's profile.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	if err := s.authorizeUserAction(ctx, userID, requestingUserID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update user in service: %w", err)
	}
	return user, nil
}

// ChangeDefaultCurrency switches the user's reporting currency and reprices
// their whole transaction history against it. Returns the number of repriced
// transactions.
func (s *userService) ChangeDefaultCurrency(ctx context.Context, userID string, currencyCode string) (int, error) {
	currency, err := s.currencyService.GetCurrencyByCode(ctx, currencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, currencyCode)
		}
		return 0, fmt.Errorf("failed to validate currency '%s': %w", currencyCode, err)
	}
	if !currency.IsActive {
		return 0, fmt.Errorf("%w: currency '%s' is not active", apperrors.ErrValidation, currencyCode)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user.DefaultCurrencyCode == currencyCode {
		return 0, nil
	}

	user.DefaultCurrencyCode = currencyCode
	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = userID
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return 0, fmt.Errorf("failed to change default currency: %w", err)
	}

	count, err := s.transactionService.RecomputeReportingAmounts(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to reprice transactions after currency change: %w", err)
	}

	s.LogInfo(ctx, "default currency changed",
		slog.String("user_id", userID),
		slog.String("currency", currencyCode),
		slog.Int("repriced", count))
	return count, nil
}

// UpdateRefreshToken stores the hashed refresh token for the user.
func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	now := time.Now().UTC()
	if err := s.userRepo.UpdateRefreshTokenHash(ctx, userID, &refreshTokenHash, &refreshTokenExpiryTime, now); err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token for the user.
func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	if err := s.userRepo.UpdateRefreshTokenHash(ctx, userID, nil, nil, now); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// DeleteUser marks a user as deleted (soft delete).
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	if err := s.authorizeUserAction(ctx, userID, requestingUserID); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := s.userRepo.MarkUserDeleted(ctx, userID, now, requestingUserID); err != nil {
		return fmt.Errorf("failed to delete user in service: %w", err)
	}
	s.LogInfo(ctx, "user deleted", slog.String("user_id", userID), slog.String("deleted_by", requestingUserID))
	return nil
}

// AuthenticateUser authenticates a user with email and password.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}
	if user.PasswordHash == "" || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	return user, nil
}

// CreateOrGetOAuthUser finds or provisions a user from an external provider
// identity. Provider accounts skip the staged signup and start in DONE.
func (s *userService) CreateOrGetOAuthUser(ctx context.Context, name, email string, provider domain.AuthProvider, providerUserID string, emailVerified bool) (*domain.User, error) {
	user, err := s.userRepo.FindUserByProviderID(ctx, provider, providerUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up provider identity: %w", err)
	}

	// A local account with the same email takes precedence over creating a
	// duplicate; the provider identity is not linked automatically.
	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		s.LogWarn(ctx, "oauth login matched an existing email account",
			slog.String("user_id", existing.UserID),
			slog.String("provider", string(provider)))
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email for oauth user: %w", err)
	}

	now := time.Now().UTC()
	newUser := domain.User{
		UserID:              uuid.NewString(),
		Name:                name,
		Email:               email,
		AuthProvider:        provider,
		ProviderUserID:      providerUserID,
		EmailVerified:       emailVerified,
		AuthStatus:          domain.AuthStatusDone,
		DefaultCurrencyCode: oauthDefaultCurrency,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	newUser.CreatedBy = newUser.UserID
	newUser.LastUpdatedBy = newUser.UserID

	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}

	s.LogInfo(ctx, "oauth user provisioned",
		slog.String("user_id", newUser.UserID),
		slog.String("provider", string(provider)))
	return &newUser, nil
}
