// Package pipeline orchestrates the per-preset inference passes:
// discover symbols, filter, emit the stub, compile it under both
// pointer widths, read back the import types, and reconcile them into
// the accumulating signature mapping.
package pipeline

import "time"

// Stage describes a phase of one preset pass.
type Stage string

const (
	// StageDiscover is symbol discovery plus filtering.
	StageDiscover Stage = "discover"
	// StageEmit is stub emission.
	StageEmit Stage = "emit"
	// StageCompile32 is the narrow-width stub compilation.
	StageCompile32 Stage = "compile32"
	// StageCompile64 is the wide-width stub compilation.
	StageCompile64 Stage = "compile64"
	// StageRead is artifact parsing for both widths.
	StageRead Stage = "read"
	// StageMerge is reconciliation and accumulator merge.
	StageMerge Stage = "merge"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the preset is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the preset pass finished.
	StatusDone Status = "done"
	// StatusError indicates the pass failed; the run aborts.
	StatusError Status = "error"
)

// Event reports progress for a preset (or for the overall run when
// Preset is empty).
type Event struct {
	Preset  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
	Symbols int
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings accumulates stage durations across all preset passes.
type Timings struct {
	stages map[Stage]time.Duration
}

// Add accumulates a duration for the given stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] += dur
}

// Duration returns the accumulated duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Total returns the sum across all stages.
func (t Timings) Total() time.Duration {
	var total time.Duration
	for _, d := range t.stages {
		total += d
	}
	return total
}
