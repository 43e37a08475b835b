package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/internal/modules/user/dto"
	"anoa.com/studyhub/internal/modules/user/repository"
	"anoa.com/studyhub/pkg/apperror"
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService interface {
	EnsureUserExists(ctx context.Context, identity dto.Identity) (*entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, filter dto.UserFilter) (*commonDto.Paginated[dto.UserResponse], error)
	UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role string) (*dto.UserResponse, error)
	CountUsers(ctx context.Context) (int64, error)
}

type userService struct {
	repo repository.UserRepository
	log  *zap.Logger
}

func NewUserService(repo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{repo: repo, log: log}
}

// EnsureUserExists returns the local user for identity, provisioning it on
// first sight. Concurrent first requests converge on a single row.
func (s *userService) EnsureUserExists(ctx context.Context, identity dto.Identity) (*entity.User, error) {
	externalID := strings.TrimSpace(identity.ExternalID)
	if externalID == "" {
		return nil, fmt.Errorf("external id is required: %w", apperror.ErrInvalidInput)
	}

	candidate := &entity.User{
		ExternalID: externalID,
		Email:      identity.Email,
		Name:       identity.Name,
		Role:       entity.RoleUser,
	}
	if candidate.Email == "" {
		candidate.Email = fmt.Sprintf("%s@users.noreply.local", externalID)
	}
	if candidate.Name == "" {
		candidate.Name = "User"
	}

	user, created, err := s.repo.InsertIfAbsent(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to provision user %s: %w", externalID, err)
	}
	if created {
		s.log.Info("user provisioned", zap.String("external_id", externalID), zap.String("user_id", user.ID.String()))
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	resp := ToResponse(user)
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context, filter dto.UserFilter) (*commonDto.Paginated[dto.UserResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	users, total, err := s.repo.FindAll(ctx, filter.Search, (filter.Page-1)*filter.Limit, filter.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, ToResponse(u))
	}

	return &commonDto.Paginated[dto.UserResponse]{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

func (s *userService) UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role string) (*dto.UserResponse, error) {
	newRole := entity.Role(role)
	if !newRole.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, apperror.ErrInvalidInput)
	}
	if actorID == userID && newRole != entity.RoleAdmin {
		return nil, fmt.Errorf("admins cannot demote themselves: %w", apperror.ErrBadRequest)
	}

	if err := s.repo.UpdateRole(ctx, userID, newRole); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	s.log.Info("user role changed",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", userID.String()),
		zap.String("role", role))

	return s.GetUser(ctx, userID)
}

func (s *userService) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func ToResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		CreatedAt:  commonDto.FormatTime(u.CreatedAt),
	}
}
