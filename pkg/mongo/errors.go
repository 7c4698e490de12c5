package mongo

import "errors"

var (
	ErrConnect   = errors.New("mongo.connect_failed")
	ErrUnhealthy = errors.New("mongo.unhealthy")
)
