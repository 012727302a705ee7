// Package logging provides a minimal logging interface and adapters for callmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn,
// Error) that the conversation handler and webhook edge use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - CallLogger adding component and call id context plus completion metrics
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	handler := conversation.NewHandler(store, completer, func(o *conversation.Options) {
//		o.Logger = logger.WithComponent("conversation")
//	})
//
// Output is transient: nothing is written to persistent storage.
package logging
