// Package logger provides structured logging backed by zerolog.
//
// Loggers carry a service name and accept structured fields as maps:
//
//	log := logger.NewDefault("orders").WithComponent("redis")
//	log.Info("Connected to Redis", logger.Fields(logger.FieldAddr, "db.local:6379"))
//
// NewFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_NO_COLOR,
// LOG_TIMESTAMP and LOG_CALLER.
package logger
