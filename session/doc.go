// Package session houses concrete implementations of core.SessionStore.
// The interface itself (and the Session struct) live in the core package so
// the conversation handler never depends on concrete storage.
//
// Only a process-local backend exists: sessions are bound to process uptime
// and are removed when the call ends. A call whose termination webhook never
// arrives keeps its session until the process exits.
package session
