// Package core provides the foundational domain types and contracts used by
// callmesh. It defines:
//
//   - Messages (role tagged conversation entries)
//   - Sessions (per-call ordered conversation history)
//   - SessionStore (the per-call history store contract)
//   - Sentinel errors shared by the store and provider adapters
//
// Implementations (in-memory storage, the completion contract and its
// provider adapters, the webhook edge) live in their own packages so the
// conversation protocol only depends on the small interfaces declared here.
package core
