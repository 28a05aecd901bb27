// Package domain defines the core business types for the RegionPulse dashboard
// backend.
//
// Types in this package are pure value objects with no behavior beyond pure
// functions on the type. They are the shared language between ingestion,
// analytics, storage, and HTTP handlers.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Reference data (regions, categories) belongs here and is read-only
package domain
