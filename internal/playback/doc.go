// Package playback holds the player's session state machine.
//
// [State] is an immutable value; every transition returns a new State and
// leaves the receiver untouched, so transitions can be tested without a
// player. [Session] wraps a State behind a mutex, forwards the effects of each
// transition to a [Player] adapter, and consumes the adapter's [Event] values.
//
// Tracks without a media id can be selected like any other track. The session
// simply leaves the player idle until a playable track becomes current.
package playback
