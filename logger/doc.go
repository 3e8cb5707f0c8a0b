// Package logger wraps zerolog behind a small structured-logging API.
//
// A process initializes the global logger once from configuration:
//
//	logger.Init(&cfg.Service.Logging)
//	log := logger.GetGlobalLogger()
//
// Components receive *Logger values and attach identity and context:
//
//	log = log.WithComponent("executor")
//	log.Info("run started", logger.Fields(logger.FieldRunID, id))
//
// Format "console" (or "pretty") renders compact colored lines for
// development; "json" emits machine-readable entries for collection.
package logger
