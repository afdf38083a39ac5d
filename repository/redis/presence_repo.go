package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/repository"
)

type presenceRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewPresenceRepository creates a Redis-backed presence tracker. Each
// touch refreshes a per-actor key whose TTL decides how long an idle
// viewer still counts as active.
func NewPresenceRepository(client *redislib.Client, ttl time.Duration) repository.PresenceRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &presenceRepository{
		client: client,
		prefix: "presence:",
		ttl:    ttl,
	}
}

func (r *presenceRepository) Touch(ctx context.Context, actor string) error {
	if actor == "" {
		return domain.ErrInvalidPayload
	}
	return r.client.Set(ctx, r.key(actor), time.Now().UTC().Format(time.RFC3339), r.ttl).Err()
}

func (r *presenceRepository) Active(ctx context.Context) ([]string, error) {
	var (
		actors []string
		cursor uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			actors = append(actors, strings.TrimPrefix(key, r.prefix))
		}
		if next == 0 {
			return actors, nil
		}
		cursor = next
	}
}

func (r *presenceRepository) key(actor string) string {
	return fmt.Sprintf("%s%s", r.prefix, actor)
}
