// Package logger provides structured logging for injectkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Debug("resolver compiled", logger.Fields("type", "Foo", "resolvers", 3))
package logger
