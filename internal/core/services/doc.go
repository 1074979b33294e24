// Package services implements the driving port interfaces.
//
// IngestionService and QueryService are the two pipelines. They are
// synchronous, add no timeouts or retries, and surface every collaborator
// error wrapped with the failing step. SettingsService resolves
// configuration into domain.Settings.
package services
