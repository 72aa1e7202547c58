package repository

import (
	"context"

	"world-digest/internal/domain/entity"
)

// DigestRepository persists processed digests and their delivery state.
type DigestRepository interface {
	// Create inserts a digest.
	Create(ctx context.Context, digest *entity.Digest) error
	// LatestForRegion retrieves the most recently created digest for a region.
	// Returns (nil, nil) when the region has no digests.
	LatestForRegion(ctx context.Context, region string) (*entity.Digest, error)
	// MarkSent records the delivery time of a digest.
	MarkSent(ctx context.Context, id string) error
	// CountDigests returns the total number of stored digests.
	CountDigests(ctx context.Context) (int64, error)
}
