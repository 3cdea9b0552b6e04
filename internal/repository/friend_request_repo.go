package repository

import (
	"studybuddy/internal/model"
	"studybuddy/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FriendRequestRepository interface {
	Create(request *model.FriendRequest) error
	FindByID(id string) (*model.FriendRequest, error)
	FindPendingByPair(fromID, toID string) (*model.FriendRequest, error)
	FindByToID(toID string) ([]*model.FriendRequest, error)
	FindByFromID(fromID string) ([]*model.FriendRequest, error)
	UpdateStatus(request *model.FriendRequest, status string) error
	Delete(id string) error
	Accept(request *model.FriendRequest) error
}

type friendRequestRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	requestIncomingCachePrefix = "friendreq:incoming:"
	requestOutgoingCachePrefix = "friendreq:outgoing:"
	requestCacheExpiration     = friendsCacheExpiration
)

func NewFriendRequestRepository(db *gorm.DB, redis *util.RedisClient) FriendRequestRepository {
	return &friendRequestRepository{
		db:    db,
		redis: redis,
	}
}

// Create inserts a new request row. The partial unique index on
// (from_id, to_id) WHERE status = 'pending' backs up the service-level
// duplicate check; a losing racer gets gorm.ErrDuplicatedKey.
func (r *friendRequestRepository) Create(request *model.FriendRequest) error {
	if err := r.db.Create(request).Error; err != nil {
		return err
	}

	r.invalidateListCaches(request.FromID, request.ToID)
	return nil
}

func (r *friendRequestRepository) FindByID(id string) (*model.FriendRequest, error) {
	var request model.FriendRequest
	err := r.db.Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindPendingByPair looks up the pending request for the exact ordered pair.
// The reverse direction is intentionally not considered: two simultaneous
// mutual invitations are a legal state.
func (r *friendRequestRepository) FindPendingByPair(fromID, toID string) (*model.FriendRequest, error) {
	var request model.FriendRequest
	err := r.db.
		Where("from_id = ? AND to_id = ? AND status = ?", fromID, toID, model.FriendRequestStatusPending).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByToID returns every request addressed to the user, newest first.
// No status filter: callers see pending, rejected and not-yet-deleted
// accepted rows alike, and filter on their side.
func (r *friendRequestRepository) FindByToID(toID string) ([]*model.FriendRequest, error) {
	if r.redis != nil {
		if cached, err := listFromCache[model.FriendRequest](r.redis, requestIncomingCachePrefix+toID); err == nil && cached != nil {
			return cached, nil
		}
	}

	var requests []*model.FriendRequest
	err := r.db.Preload("From").
		Where("to_id = ?", toID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		cacheList(r.redis, requestIncomingCachePrefix+toID, requests, requestCacheExpiration)
	}

	return requests, nil
}

// FindByFromID returns every request the user has sent, newest first, with
// the same no-status-filter contract as FindByToID.
func (r *friendRequestRepository) FindByFromID(fromID string) ([]*model.FriendRequest, error) {
	if r.redis != nil {
		if cached, err := listFromCache[model.FriendRequest](r.redis, requestOutgoingCachePrefix+fromID); err == nil && cached != nil {
			return cached, nil
		}
	}

	var requests []*model.FriendRequest
	err := r.db.Preload("To").
		Where("from_id = ?", fromID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		cacheList(r.redis, requestOutgoingCachePrefix+fromID, requests, requestCacheExpiration)
	}

	return requests, nil
}

// UpdateStatus transitions a request only while it is still pending, so two
// concurrent rejects (or a reject racing an accept) cannot both win.
func (r *friendRequestRepository) UpdateStatus(request *model.FriendRequest, status string) error {
	result := r.db.Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", request.ID, model.FriendRequestStatusPending).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	request.Status = status
	r.invalidateListCaches(request.FromID, request.ToID)
	return nil
}

func (r *friendRequestRepository) Delete(id string) error {
	var request model.FriendRequest
	if err := r.db.Where("id = ?", id).First(&request).Error; err != nil {
		return err
	}

	if err := r.db.Delete(&request).Error; err != nil {
		return err
	}

	r.invalidateListCaches(request.FromID, request.ToID)
	return nil
}

// Accept consumes a pending request: one transaction inserts the canonical
// friendship edge (idempotently) and deletes the request row. The delete is
// guarded on status = pending so a concurrent accept of the same id sees
// gorm.ErrRecordNotFound instead of double-consuming.
func (r *friendRequestRepository) Accept(request *model.FriendRequest) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		edge := model.NewFriendship(request.FromID, request.ToID)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
			return err
		}

		result := tx.
			Where("id = ? AND status = ?", request.ID, model.FriendRequestStatusPending).
			Delete(&model.FriendRequest{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.invalidateListCaches(request.FromID, request.ToID)
	invalidateFriendsCache(r.redis, request.FromID, request.ToID)
	return nil
}

func (r *friendRequestRepository) invalidateListCaches(fromID, toID string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(requestIncomingCachePrefix + toID)
	r.redis.Delete(requestOutgoingCachePrefix + fromID)
}
