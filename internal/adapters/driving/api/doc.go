// Package api exposes the ingestion and query services over HTTP.
//
// Routes live under /api/v1 and exchange JSON. Failures are reported as
// {"detail": "..."} with a status derived from the core's sentinel errors.
package api
