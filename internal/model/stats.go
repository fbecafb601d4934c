package model

import "time"

// Outcome classifies what happened to a single candidate block.
type Outcome string

const (
	OutcomeRecord         Outcome = "record"
	OutcomeStructuralSkip Outcome = "structural_skip" // no readable title or link
	OutcomeFilterSkip     Outcome = "filter_skip"     // title lacks the keyword
	OutcomeFetchSkip      Outcome = "fetch_skip"      // detail page unreachable
)

// Stats tallies block outcomes for one batch run.
type Stats struct {
	Blocks          int `json:"blocks" yaml:"blocks"`
	Records         int `json:"records" yaml:"records"`
	StructuralSkips int `json:"structural_skips" yaml:"structural_skips"`
	FilterSkips     int `json:"filter_skips" yaml:"filter_skips"`
	FetchSkips      int `json:"fetch_skips" yaml:"fetch_skips"`
	FieldGroupMiss  int `json:"field_group_misses" yaml:"field_group_misses"`
}

// Record counts one block outcome.
func (s *Stats) Record(o Outcome) {
	s.Blocks++
	switch o {
	case OutcomeRecord:
		s.Records++
	case OutcomeStructuralSkip:
		s.StructuralSkips++
	case OutcomeFilterSkip:
		s.FilterSkips++
	case OutcomeFetchSkip:
		s.FetchSkips++
	}
}

// Add folds other into s.
func (s *Stats) Add(other Stats) {
	s.Blocks += other.Blocks
	s.Records += other.Records
	s.StructuralSkips += other.StructuralSkips
	s.FilterSkips += other.FilterSkips
	s.FetchSkips += other.FetchSkips
	s.FieldGroupMiss += other.FieldGroupMiss
}

// Timings records wall-clock duration of each search phase.
type Timings struct {
	Listing    time.Duration `json:"listing" yaml:"listing"`
	Extraction time.Duration `json:"extraction" yaml:"extraction"`
}
