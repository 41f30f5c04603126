// Package session owns the set of live terminal sessions, their
// activation state, and split-view layout bookkeeping.
//
// A session's profile and theme are resolved against the registries
// once, at creation, and embedded by value. Removing a profile or
// theme later never retroactively mutates a running session.
//
// At most one session is active at any instant; activation handover
// is atomic with respect to other registry mutations.
package session
