// Package models defines the client-side copies of backend resources and the
// few records the client persists locally. The backend owns every schema here;
// JSON tags follow its camelCase wire format.
package models
