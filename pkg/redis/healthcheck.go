package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Healthcheck returns a readiness probe for the session store connection.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		pong, err := client.Ping(ctx).Result()
		if err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		if pong != "PONG" {
			return errors.Join(ErrUnhealthy, errors.New("unexpected ping reply "+pong))
		}
		return nil
	}
}
