// Package cli is the Lingua terminal client.
//
// NewRootCommand builds a cobra command tree. Its pre-run hook resolves the
// configuration (defaults, JSON file, environment, flags) and wires an App:
// local SQLite store, sealed token store, TTL cache, REST client, services,
// the realtime conversation service and the Socket.IO namespace client.
//
// Commands that need a session are wrapped by runner.authed, which refuses
// to run them while signed out. The shell command offers the same tree as an
// interactive loop.
package cli
