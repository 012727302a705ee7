// Package model defines the provider agnostic completion contract used by the
// conversation handler, plus shared helpers for provider adapters.
//
// Core goals:
//   - Represent the outcome of a completion as a tagged Result instead of
//     trusting field presence in provider payloads
//   - Keep generation parameters (model id, output bound, temperature) in one
//     Options shape shared by every adapter
//   - Facilitate deterministic testing (MockModel)
//
// Providers (OpenAI compatible endpoints, Anthropic) implement Completer in
// sub-packages so the conversation protocol stays decoupled from vendor SDKs.
package model
