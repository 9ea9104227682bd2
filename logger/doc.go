// Package logger provides structured logging for restkit using zerolog.
//
// Packages obtain a component-scoped logger from the global instance:
//
//	log := logger.WithComponent("request")
//	log.Debug("request sent", logger.Fields(logger.FieldMethod, "GET", logger.FieldURL, u))
//
// Applications configure the global logger once with Init.
package logger
