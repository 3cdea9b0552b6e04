package repository

import (
	"strconv"
	"time"

	"studybuddy/internal/model"
	"studybuddy/internal/util"

	"gorm.io/gorm"
)

// PresenceRepository stores last-seen timestamps. Postgres is the source of
// truth; when Redis is up a sorted set keyed by unix seconds serves liveness
// queries without touching the database.
type PresenceRepository interface {
	Touch(userID string, at time.Time) error
	LastSeen(userID string) (time.Time, bool, error)
	SeenSince(userIDs []string, cutoff time.Time) ([]string, error)
}

type presenceRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const presenceLastSeenKey = "presence:lastseen"

func NewPresenceRepository(db *gorm.DB, redis *util.RedisClient) PresenceRepository {
	return &presenceRepository{
		db:    db,
		redis: redis,
	}
}

// Touch records a heartbeat. The write is monotonic in a single statement:
// GREATEST keeps the stored value when a delayed heartbeat arrives out of
// order. Unknown users are upserted, never rejected.
func (r *presenceRepository) Touch(userID string, at time.Time) error {
	err := r.db.Exec(`
		INSERT INTO presences (user_id, last_seen_at)
		VALUES (?, ?)
		ON CONFLICT (user_id)
		DO UPDATE SET last_seen_at = GREATEST(presences.last_seen_at, EXCLUDED.last_seen_at)`,
		userID, at,
	).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		// ZADD GT mirrors the GREATEST semantics on the fast path.
		r.redis.ZAddGT(presenceLastSeenKey, float64(at.Unix()), userID)
	}

	return nil
}

// LastSeen returns the stored heartbeat for a user; found is false when the
// user has never sent one.
func (r *presenceRepository) LastSeen(userID string) (time.Time, bool, error) {
	var presence model.Presence
	err := r.db.Where("user_id = ?", userID).First(&presence).Error
	if err == gorm.ErrRecordNotFound {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return presence.LastSeenAt, true, nil
}

// SeenSince returns the subset of userIDs whose last heartbeat is at or after
// cutoff. The Redis sorted set answers when available, falling back to the
// presences table.
func (r *presenceRepository) SeenSince(userIDs []string, cutoff time.Time) ([]string, error) {
	if len(userIDs) == 0 {
		return []string{}, nil
	}

	if r.redis != nil {
		fresh, err := r.redis.ZRangeByScore(presenceLastSeenKey, strconv.FormatInt(cutoff.Unix(), 10), "+inf")
		if err == nil {
			freshSet := make(map[string]bool, len(fresh))
			for _, id := range fresh {
				freshSet[id] = true
			}
			online := make([]string, 0, len(userIDs))
			for _, id := range userIDs {
				if freshSet[id] {
					online = append(online, id)
				}
			}
			return online, nil
		}
	}

	var presences []model.Presence
	err := r.db.
		Where("user_id IN ? AND last_seen_at >= ?", userIDs, cutoff).
		Find(&presences).Error
	if err != nil {
		return nil, err
	}

	online := make([]string, 0, len(presences))
	for _, p := range presences {
		online = append(online, p.UserID)
	}
	return online, nil
}
