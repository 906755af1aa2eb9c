// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Repositories for long-lived entities support soft deletes via deleted_at timestamps and exclude
// deleted records from queries by default.
//
// Key Implementations:
//   - [UserRepository] : Account persistence with email lookups and the premium entitlement check
//   - [CleanJobRepository] : Clean-job lifecycle rows with status-based queries
//   - [TrackMappingRepository] : Source-to-clean-substitute rows, written only in transactional
//     batches together with the owning job's progress counters
//   - [SyncConfigRepository] : Recurring-sync opt-in records with due-time queries
//   - [SyncHistoryRepository] : Append-only audit rows, finalized exactly once
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation
// timestamps. The [NextSequence] function atomically increments per-table sequence counters in
// dedicated sequence tables. Track mappings deliberately have no sequence: they are bulk-inserted
// inside batch transactions and ordered by their source playlist position instead.
package repositories
