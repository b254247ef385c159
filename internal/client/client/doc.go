// Package client talks to the Lingua REST backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see Client and its per-resource
//     parts AuthAPI, TutorAPI, AchievementsAPI, CurriculumAPI, GamesAPI,
//     ProgressAPI, SubscriptionsAPI).
//  2. A concrete JSON-over-HTTP implementation (see HTTPClient) that attaches
//     the bearer token from a tokens.Store, tags each request with an
//     X-Request-ID, unwraps {"data": ...} envelopes and normalizes failures
//     into *APIError.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns *APIError. Its message is taken from the body's
// "message" field, then "error", then the raw body, falling back to the HTTP
// status text. Classes of failure are matchable with errors.Is: ErrTimeout,
// ErrNetwork, ErrUnauthorized, ErrNotFound, ErrUnavailable. Nothing is
// retried, except a single replay after a token refresh when auto refresh is
// enabled (WithAutoRefresh).
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package client
