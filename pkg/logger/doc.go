// Package logger builds the console's *slog.Logger.
//
// New applies functional options (format, level, environment presets, static
// attributes) and wraps the handler with a decorator that pulls
// request-scoped values such as the request id out of the context on every
// record. Attribute helpers in attr.go keep key names consistent across
// packages:
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "medstock-console"),
//	    logger.WithContextExtractors(requestIDExtractor),
//	)
//	log.InfoContext(ctx, "role assigned",
//	    logger.UserID(u.ID),
//	    logger.Role(u.Role),
//	    logger.Component("users"),
//	)
package logger
