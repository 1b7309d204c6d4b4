package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followingID uuid.UUID) (*models.User, error) {
	if followerID == followingID {
		return nil, ErrSelfFollow
	}

	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", followingID).Error; err != nil {
		return nil, err
	}

	edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyFollowing
		}
		return nil, err
	}
	return &target, nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// IsFollowing is false for the zero caller id (anonymous reads).
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	if followerID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// Following returns the users the caller follows, oldest subscription
// first.
func (s *FollowService) Following(ctx context.Context, followerID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", followerID).
		Order("follows.created_at").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FollowingSet loads the ids of everyone the caller follows, used to
// annotate user projections in one query.
func (s *FollowService) FollowingSet(ctx context.Context, followerID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	set := make(map[uuid.UUID]struct{})
	if followerID == uuid.Nil {
		return set, nil
	}
	var edges []models.Follow
	if err := s.db.WithContext(ctx).Where("follower_id = ?", followerID).Find(&edges).Error; err != nil {
		return nil, err
	}
	for _, edge := range edges {
		set[edge.FollowingID] = struct{}{}
	}
	return set, nil
}
