package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/diet-service/internal/cache"
	"github.com/SAP-F-2025/diet-service/internal/events"
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
	"github.com/SAP-F-2025/diet-service/internal/security"
)

type accountService struct {
	repo      repositories.Repository
	diets     DietService
	hasher    security.PasswordHasher
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewAccountService(
	repo repositories.Repository,
	diets DietService,
	hasher security.PasswordHasher,
	cm *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
) AccountService {
	return &accountService{
		repo:      repo,
		diets:     diets,
		hasher:    hasher,
		cache:     cm,
		publisher: publisher,
		logger:    logger,
	}
}

// cachedUser keeps the password hash, which User hides from JSON.
type cachedUser struct {
	User         models.User `json:"user"`
	PasswordHash string      `json:"password_hash"`
}

// ===== AUTHENTICATION =====

func (s *accountService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	s.logger.Info("Registering user", "user_id", req.UserID)

	existing, err := s.repo.Users().Count(ctx, repositories.Filter{"user_id": req.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to check user id: %w", err)
	}
	if existing > 0 {
		return nil, NewConflictError("user.already_exists", req.UserID)
	}
	if err := s.requireFreeEmail(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		UserID:      req.UserID,
		Email:       req.Email,
		Password:    hash,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Role:        models.RoleUser,
	}
	if err := s.repo.Users().Create(ctx, user); err != nil {
		// A concurrent registration can win between the check and the insert.
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("user.already_exists", req.UserID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	events.PublishSafe(ctx, s.publisher, s.logger, events.UserRegistered, events.UserEvent{
		UserID: user.UserID,
		Email:  user.Email,
	})
	return user, nil
}

func (s *accountService) Login(ctx context.Context, userID, password string) (*models.User, error) {
	user, err := findOne(ctx, s.repo.Users(), repositories.Filter{"user_id": userID}, errUserNotFound(userID))
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(user.Password, password) {
		return nil, NewConflictError("user.wrong_password")
	}

	user.LastSeenAt = time.Now()
	if err := s.repo.Users().Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update last seen: %w", err)
	}
	cache.InvalidateUser(ctx, s.cache, user.UserID)
	return user, nil
}

// Authenticate accepts "@<user_id>:<credential>" where the credential is
// either the stored hash handed out as a token or the plain password.
func (s *accountService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	rest, ok := strings.CutPrefix(token, "@")
	if !ok {
		return nil, NewAuthenticationError()
	}
	sep := strings.LastIndex(rest, ":")
	if sep <= 0 || sep == len(rest)-1 {
		return nil, NewAuthenticationError()
	}
	userID, credential := rest[:sep], rest[sep+1:]

	user, err := s.cachedUser(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewAuthenticationError()
		}
		return nil, err
	}
	if credential != user.Password && !s.hasher.Verify(user.Password, credential) {
		return nil, NewAuthenticationError()
	}
	return user, nil
}

func (s *accountService) AuthenticateExternal(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.cachedUser(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewAuthenticationError()
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) cachedUser(ctx context.Context, userID string) (*models.User, error) {
	var entry cachedUser
	err := s.cache.Users.CacheOrExecute(ctx, userID, &entry, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		user, err := s.repo.Users().FindOne(ctx, repositories.Filter{"user_id": userID})
		if err != nil {
			return nil, err
		}
		return cachedUser{User: *user, PasswordHash: user.Password}, nil
	})
	if err != nil {
		return nil, err
	}
	user := entry.User
	user.Password = entry.PasswordHash
	return &user, nil
}

// ===== ACCOUNTS =====

// Delete is admin only and removes the user's profile and submissions.
func (s *accountService) Delete(ctx context.Context, actor *models.User, userID string) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if _, err := findOne(ctx, s.repo.Users(), repositories.Filter{"user_id": userID}, errUserNotFound(userID)); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		byUser := repositories.Filter{"user_id": userID}
		if _, err := tx.Profiles().Delete(ctx, byUser); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		if _, err := tx.Submissions().Delete(ctx, byUser); err != nil {
			return fmt.Errorf("failed to delete submissions: %w", err)
		}
		if _, err := tx.Users().Delete(ctx, byUser); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, s.cache, userID)
	s.logger.Info("User deleted", "user_id", userID, "actor", actor.UserID)
	events.PublishSafe(ctx, s.publisher, s.logger, events.UserDeleted, events.UserEvent{UserID: userID})
	return nil
}

func (s *accountService) Get(ctx context.Context, userID string) (*models.User, error) {
	return findOne(ctx, s.repo.Users(), repositories.Filter{"user_id": userID}, errUserNotFound(userID))
}

func (s *accountService) List(ctx context.Context, page string) (*Page[models.User], error) {
	users, overflow, err := paginate(ctx, s.repo.Users(), page)
	if err != nil {
		return nil, err
	}
	return &Page[models.User]{Overflow: overflow, Results: users}, nil
}

// Edit updates the user's own account, or any account for an admin. A
// role change from a non-admin is ignored.
func (s *accountService) Edit(ctx context.Context, actor *models.User, req *EditUserRequest) (*models.User, error) {
	user, err := findOne(ctx, s.repo.Users(), repositories.Filter{"user_id": req.UserID}, errUserNotFound(req.UserID))
	if err != nil {
		return nil, err
	}
	if err := requireSelfOr(actor, user.UserID, models.RoleAdmin); err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if err := s.requireFreeEmail(ctx, *req.Email, user.UserID); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	assign(&user.FirstName, req.FirstName)
	assign(&user.LastName, req.LastName)
	assign(&user.DateOfBirth, req.DateOfBirth)
	if req.Role != nil && actor.Role.AtLeast(models.RoleAdmin) {
		user.Role = *req.Role
	}
	applyVitals(user, req.Vitals)

	if err := s.repo.Users().Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	cache.InvalidateUser(ctx, s.cache, user.UserID)
	return user, nil
}

func (s *accountService) UpdateVitals(ctx context.Context, userID string, vitals Vitals) (*models.User, error) {
	user, err := findOne(ctx, s.repo.Users(), repositories.Filter{"user_id": userID}, errUserNotFound(userID))
	if err != nil {
		return nil, err
	}
	applyVitals(user, vitals)

	if err := s.repo.Users().Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record vitals: %w", err)
	}
	cache.InvalidateUser(ctx, s.cache, user.UserID)
	s.logger.Debug("Vitals recorded", "user_id", userID)
	return user, nil
}

func (s *accountService) requireFreeEmail(ctx context.Context, email, ownerID string) error {
	other, err := findOptional(ctx, s.repo.Users(), repositories.Filter{"email": email})
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if other != nil && other.UserID != ownerID {
		return NewConflictError("user.email_taken", email)
	}
	return nil
}

func applyVitals(user *models.User, vitals Vitals) {
	if vitals.Weight != nil {
		user.Weight = vitals.Weight
	}
	if vitals.BodyFat != nil {
		user.BodyFat = vitals.BodyFat
	}
	if vitals.BloodPressure != nil {
		user.BloodPressure = vitals.BloodPressure
	}
	if vitals.HeartRate != nil {
		user.HeartRate = vitals.HeartRate
	}
	if vitals.OxygenLevel != nil {
		user.OxygenLevel = vitals.OxygenLevel
	}
}

// ===== PROFILES =====

// Profile returns the user's profile, creating an empty one on first use.
func (s *accountService) Profile(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := findOne(ctx, s.repo.Users(), repositories.Filter{"user_id": userID}, errUserNotFound(userID))
	if err != nil {
		return nil, err
	}
	profile, err := s.profileOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.respondProfile(ctx, user, profile)
}

func (s *accountService) EditProfile(ctx context.Context, actor *models.User, req *EditProfileRequest) (*ProfileResponse, error) {
	user, err := findOne(ctx, s.repo.Users(), repositories.Filter{"user_id": req.UserID}, errUserNotFound(req.UserID))
	if err != nil {
		return nil, err
	}
	if err := requireSelfOr(actor, user.UserID, models.RoleAdmin); err != nil {
		return nil, err
	}
	profile, err := s.profileOf(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	if req.Preferences != nil {
		profile.Preferences = datatypes.JSONMap(req.Preferences)
	}
	if req.DietID != nil {
		if _, err := findOne(ctx, s.repo.Diets(), repositories.Filter{"diet_id": *req.DietID}, errGenericNotFound()); err != nil {
			return nil, err
		}
		dietID := *req.DietID
		profile.DietID = &dietID
	}

	if err := s.repo.Profiles().Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.respondProfile(ctx, user, profile)
}

func (s *accountService) profileOf(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := findOptional(ctx, s.repo.Profiles(), repositories.Filter{"user_id": userID})
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = &models.Profile{UserID: userID, Preferences: datatypes.JSONMap{}}
	if err := s.repo.Profiles().Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	s.logger.Info("Profile created", "user_id", userID, "profile_id", profile.ProfileID)
	return profile, nil
}

func (s *accountService) respondProfile(ctx context.Context, user *models.User, profile *models.Profile) (*ProfileResponse, error) {
	resp := &ProfileResponse{Profile: *profile, User: *user}

	if profile.DietID != nil {
		diet, err := s.diets.Get(ctx, *profile.DietID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		resp.Diet = diet
	}
	if profile.NutritionID != nil {
		nutrition, err := findOptional(ctx, s.repo.Nutritions(), repositories.Filter{"nutrition_id": *profile.NutritionID})
		if err != nil {
			return nil, err
		}
		resp.Nutrition = nutrition
	}
	return resp, nil
}
