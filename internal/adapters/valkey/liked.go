package valkey

import (
	"context"
	"fmt"
)

func likedKey(deviceID string) string {
	return "artmap:liked:" + deviceID
}

// ToggleLiked adds artworkID to the device's liked set, or removes it when
// already present. It reports whether the artwork is liked afterwards.
func (c *Cache) ToggleLiked(ctx context.Context, deviceID, artworkID string) (bool, error) {
	key := likedKey(deviceID)

	added, err := c.client.Do(ctx, c.client.B().Sadd().Key(key).Member(artworkID).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("sadd %s: %w", key, err)
	}
	if added == 1 {
		return true, nil
	}

	if err := c.client.Do(ctx, c.client.B().Srem().Key(key).Member(artworkID).Build()).Error(); err != nil {
		return false, fmt.Errorf("srem %s: %w", key, err)
	}
	return false, nil
}

// IsLiked reports whether the device liked the artwork.
func (c *Cache) IsLiked(ctx context.Context, deviceID, artworkID string) (bool, error) {
	n, err := c.client.Do(ctx, c.client.B().Sismember().Key(likedKey(deviceID)).Member(artworkID).Build()).AsInt64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Liked lists the artworks a device liked.
func (c *Cache) Liked(ctx context.Context, deviceID string) ([]string, error) {
	return c.client.Do(ctx, c.client.B().Smembers().Key(likedKey(deviceID)).Build()).AsStrSlice()
}
