package repository

import (
	"encoding/json"
	"time"

	"studybuddy/internal/model"
	"studybuddy/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendshipRepository is the social graph store. Edges live as one canonical
// row per pair (see model.Friendship), so symmetry holds by construction and
// both mutations are single atomic statements.
type FriendshipRepository interface {
	AddEdge(userA, userB string) error
	RemoveEdge(userA, userB string) error
	ListFriends(userID string) ([]string, error)
	IsFriend(userA, userB string) (bool, error)
}

type friendshipRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	friendsCachePrefix     = "friends:"
	friendsCacheExpiration = 15 * time.Minute
)

func NewFriendshipRepository(db *gorm.DB, redis *util.RedisClient) FriendshipRepository {
	return &friendshipRepository{
		db:    db,
		redis: redis,
	}
}

// AddEdge inserts the canonical edge for the pair. Already-present edges are
// not an error.
func (r *friendshipRepository) AddEdge(userA, userB string) error {
	edge := model.NewFriendship(userA, userB)
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
		return err
	}

	invalidateFriendsCache(r.redis, userA, userB)
	return nil
}

// RemoveEdge deletes the canonical edge for the pair. Missing edges are not
// an error.
func (r *friendshipRepository) RemoveEdge(userA, userB string) error {
	low, high := model.CanonicalPair(userA, userB)
	err := r.db.
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Delete(&model.Friendship{}).Error
	if err != nil {
		return err
	}

	invalidateFriendsCache(r.redis, userA, userB)
	return nil
}

// ListFriends returns the other endpoint of every edge touching the user.
func (r *friendshipRepository) ListFriends(userID string) ([]string, error) {
	if r.redis != nil {
		if cached, err := r.redis.Get(friendsCachePrefix + userID); err == nil {
			var friends []string
			if err := json.Unmarshal([]byte(cached), &friends); err == nil {
				return friends, nil
			}
		}
	}

	var edges []model.Friendship
	err := r.db.
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	friends := make([]string, 0, len(edges))
	for _, edge := range edges {
		friends = append(friends, edge.OtherUser(userID))
	}

	if r.redis != nil {
		if data, err := json.Marshal(friends); err == nil {
			r.redis.Set(friendsCachePrefix+userID, string(data), friendsCacheExpiration)
		}
	}

	return friends, nil
}

// IsFriend is a single canonical-row lookup; both argument orders agree by
// construction.
func (r *friendshipRepository) IsFriend(userA, userB string) (bool, error) {
	low, high := model.CanonicalPair(userA, userB)
	var count int64
	err := r.db.Model(&model.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func invalidateFriendsCache(redis *util.RedisClient, userA, userB string) {
	if redis == nil {
		return
	}
	redis.Delete(friendsCachePrefix + userA)
	redis.Delete(friendsCachePrefix + userB)
}
