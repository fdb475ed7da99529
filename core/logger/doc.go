// Package logger builds the zap loggers used by commands, handlers and the engine.
//
// New selects a development config for the debug level and a production config otherwise,
// with console or json encoding. Two helpers derive child loggers:
//
//   - WithRayID tags request logs with the ray id set by the rayid middleware.
//   - WithRun tags engine logs with the run id of a reconciliation session.
//
// Example:
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "json"})
//	l := logger.WithRayID(log, c)
//	l.Warn("Rule book loaded with warnings", zap.Int("count", n))
package logger
