// Package tasks contains the cleaning and sync engines.
//
// [Cleaner] turns an explicit playlist into a clean copy, recording a
// [models.TrackMapping] per source track as it goes. [Syncer] replays
// source-playlist changes onto the clean copy on a schedule, reusing the
// stored mappings so already-resolved tracks never hit search again.
// [ProgressBatcher] throttles progress reporting and persistence to roughly
// twenty checkpoints per job regardless of playlist size.
package tasks
