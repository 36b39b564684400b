// Package store persists batch run history in SQLite: one row per run
// with its outcome counts, one row per job result. The history lets a
// migration effort answer "when did this input start mismatching"
// without digging through per-run summary files.
package store
