// Package session holds the per-user state of the fetch, convert and
// deliver steps and the Flow that drives them.
//
// Every operation takes a session ID, loads that session's State from a
// Store, works on it and saves it back. Sessions never share state; at most
// one step runs per session at a time (ErrBusy otherwise).
package session
