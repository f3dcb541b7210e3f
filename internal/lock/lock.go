package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard is a single-flight lock over one Redis key. The reconciler takes a
// guard per authorization id so concurrent retry tasks and manual reconcile
// runs never rebuild the same ledger row twice. The token identifies the
// holder so only the holder can release.
type Guard struct {
	client redis.UniversalClient
	key    string
	token  string
}

func NewGuard(client redis.UniversalClient, key, token string) *Guard {
	return &Guard{client: client, key: key, token: token}
}

// Acquire takes the lock for at most ttl. It fails immediately when another
// holder has the key; callers treat that as "someone else is already on it".
func (g *Guard) Acquire(ctx context.Context, ttl time.Duration) error {
	ok, err := g.client.SetNX(ctx, g.key, g.token, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("lock for key %s is already held", g.key)
	}
	return nil
}

// releaseScript deletes the key only when the caller still holds it, so an
// expired lock taken over by another holder is never released by the old one.
const releaseScript = "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"

func (g *Guard) Release(ctx context.Context) error {
	result, err := g.client.Eval(ctx, releaseScript, []string{g.key}, g.token).Result()
	if err != nil {
		return err
	}
	if result == int64(0) {
		return fmt.Errorf("release failed, lock for key %s expired or is held by someone else", g.key)
	}
	return nil
}
