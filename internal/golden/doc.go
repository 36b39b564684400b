// Package golden manages frozen baseline documents: freezing a tree of
// legacy reports into canonical core artifacts plus a manifest,
// resolving an arbitrary input file to its recorded baseline, and
// validating that frozen baselines survive a render/reparse round trip.
package golden
