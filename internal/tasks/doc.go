// Package tasks runs long playlist operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [PlaylistEngine.Fill] : Build a playlist from a list of queries
//     - Searches every query through a rate-limited worker pool
//     - Adds the top hit of each query to the active playlist, in query order
//     - Songs already in the playlist are counted as skipped, not failed
//
//  2. [PlaylistEngine.BulkExport] : Export every playlist to its own file
//     - Formats: json, csv, markdown (with optional cover image), txt
//     - Writes an export_manifest.json summarizing the run
//
// # Progress Reporting
//
// All operations accept an optional progress channel. The [ProgressUpdate]
// struct carries phase, step counters, a display message and optional data.
// Updates use select with default, so a slow or absent reader never blocks work.
package tasks
