// Package models defines domain entities and persistence interfaces for the RadioWash playlist cleaning service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing catalog data
//   - [Playlist] : Playlist metadata from the streaming catalog
//   - [Track] : Track metadata with the explicit flag and playable URI
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [User] : Account projection carrying the premium entitlement flag
//   - [CleanJob] : One clean-playlist request with its forward-only status machine
//   - [TrackMapping] : Source-to-clean-substitute correspondence, reused across sync runs
//   - [SyncConfig] : Opt-in record for recurring reconciliation of one cleaned playlist
//   - [SyncHistory] : Append-only audit row per sync attempt
//
// All persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
