package redis

import "errors"

var (
	ErrEmptyURL   = errors.New("redis.empty_url")
	ErrInvalidURL = errors.New("redis.invalid_url")
	ErrNotReady   = errors.New("redis.not_ready")
	ErrUnhealthy  = errors.New("redis.unhealthy")
)
