// Package batch runs the regression verification loop: for each input
// structure it invokes an external analysis engine, captures the
// engine's report or pairs artifact, parses it into a canonical
// document, compares it against the frozen baseline, and classifies
// the job outcome. One bad input never aborts a batch; every failure
// is converted into a per-job result.
package batch
