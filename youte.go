// Package youte collects metadata from the YouTube Data API in quota-aware,
// resumable runs and flattens the raw responses into tabular form.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, http/, slog/).
package youte
