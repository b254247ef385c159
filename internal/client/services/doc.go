// Package services contains application services for the Lingua client.
//
// Services sit between the terminal front end and the REST client. Read
// paths degrade silently: when the backend fails, listings come back empty
// (or from a stale cache entry) and a warning is logged. Mutations return
// their errors.
package services
