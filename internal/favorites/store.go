// internal/favorites/store.go
package favorites

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"listing-service/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyFavorite = errors.New("ALREADY_FAVORITE")
	ErrNotFavorite     = errors.New("NOT_FAVORITE")
	ErrInvalidUser     = errors.New("INVALID_USER")
)

// Store keeps each user's favorite listing ids in a redis set.
type Store struct {
	client *redis.Client
	logger logger.Logger
}

func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{client: client, logger: log}
}

func key(userID int64) string {
	return fmt.Sprintf("favorites:%d", userID)
}

func checkUser(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUser, userID)
	}
	return nil
}

// Add marks listingID as a favorite of userID.
func (s *Store) Add(ctx context.Context, userID, listingID int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	added, err := s.client.SAdd(ctx, key(userID), listingID).Result()
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("%w: listing %d", ErrAlreadyFavorite, listingID)
	}
	s.logger.Debug("Added favorite", map[string]interface{}{"userId": userID, "listingId": listingID})
	return nil
}

func (s *Store) Remove(ctx context.Context, userID, listingID int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	removed, err := s.client.SRem(ctx, key(userID), listingID).Result()
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("%w: listing %d", ErrNotFavorite, listingID)
	}
	return nil
}

func (s *Store) IsFavorite(ctx context.Context, userID, listingID int64) (bool, error) {
	if err := checkUser(userID); err != nil {
		return false, err
	}
	ok, err := s.client.SIsMember(ctx, key(userID), listingID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return ok, nil
}

// List returns the user's favorite listing ids in ascending order.
func (s *Store) List(ctx context.Context, userID int64) ([]int64, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	members, err := s.client.SMembers(ctx, key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			s.logger.Warn("Skipping malformed favorite", map[string]interface{}{"userId": userID, "member": m})
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
