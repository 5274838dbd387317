package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"aphs/backend/internal/dto"
	"aphs/backend/internal/model"
	"aphs/backend/internal/repository"
)

// ── 用户档案模块业务错误 ──

var (
	ErrEmailTaken  = errors.New("该邮箱已被注册")
	ErrInvalidRole = errors.New("角色无效")
)

// ProfileService 用户档案业务接口（管理端创建与查询）
type ProfileService interface {
	Create(ctx context.Context, req *dto.CreateProfileRequest, callerID string) (*dto.ProfileResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProfileResponse, error)
	List(ctx context.Context, req *dto.ProfileListRequest) ([]dto.ProfileResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateProfileRequest, callerID string) (*dto.ProfileResponse, error)
}

type profileService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProfileService 创建 ProfileService 实例
func NewProfileService(repo *repository.Repository, logger *zap.Logger) ProfileService {
	return &profileService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *profileService) Create(ctx context.Context, req *dto.CreateProfileRequest, callerID string) (*dto.ProfileResponse, error) {
	if _, err := s.repo.Profile.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("生成密码哈希失败", zap.Error(err))
		return nil, err
	}

	lang := req.Language
	if lang == "" {
		lang = "fr"
	}
	profile := &model.Profile{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Language:     lang,
	}
	profile.CreatedBy = &callerID
	profile.UpdatedBy = &callerID

	if err := s.repo.Profile.Create(ctx, profile); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}
	return toProfileResponse(profile), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *profileService) GetByID(ctx context.Context, id string) (*dto.ProfileResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toProfileResponse(profile), nil
}

func (s *profileService) List(ctx context.Context, req *dto.ProfileListRequest) ([]dto.ProfileResponse, int64, error) {
	profiles, total, err := s.repo.Profile.List(ctx, req.Role, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		result = append(result, *toProfileResponse(&profiles[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *profileService) Update(ctx context.Context, id string, req *dto.UpdateProfileRequest, callerID string) (*dto.ProfileResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Role != nil {
		profile.Role = *req.Role
	}
	if req.Language != nil {
		profile.Language = *req.Language
	}
	profile.UpdatedBy = &callerID
	profile.UpdatedAt = time.Now()

	if err := s.repo.Profile.Update(ctx, profile); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toProfileResponse(profile), nil
}
