package models

import "fmt"

// MethodDefinition is a method name found by the definition extractor.
// Names are not unique across files; each (File, Name, Ordinal) is independent.
type MethodDefinition struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Ordinal int    `json:"-"` // position within File's definitions
}

// Finding is a definition with no detected usage anywhere in the corpus.
type Finding struct {
	File string `json:"file"`
	Name string `json:"name"`
	Line int    `json:"line"`
}

// NewFinding creates a finding for an unused definition.
func NewFinding(def MethodDefinition) Finding {
	return Finding{File: def.File, Name: def.Name, Line: def.Line}
}

// String formats the finding as "file: name".
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.File, f.Name)
}

// UnusedSummary provides aggregate statistics for a scan.
type UnusedSummary struct {
	DefinitionDirs    []string       `json:"definition_dirs"`
	TotalFilesScanned int            `json:"total_files_scanned"`
	TotalDefinitions  int            `json:"total_definitions"`
	TotalUnused       int            `json:"total_unused"`
	CorpusFiles       int            `json:"corpus_files"`
	SkippedFiles      int            `json:"skipped_files"`
	UnusedPercentage  float64        `json:"unused_percentage"`
	ByFile            map[string]int `json:"by_file"`
}

// NewUnusedSummary creates an initialized summary.
func NewUnusedSummary() UnusedSummary {
	return UnusedSummary{
		ByFile: make(map[string]int),
	}
}

// AddFinding updates the summary with an unused definition.
func (s *UnusedSummary) AddFinding(f Finding) {
	s.TotalUnused++
	s.ByFile[f.File]++
}

// CalculatePercentage computes the share of definitions reported unused.
func (s *UnusedSummary) CalculatePercentage() {
	if s.TotalDefinitions > 0 {
		s.UnusedPercentage = float64(s.TotalUnused) / float64(s.TotalDefinitions) * 100
	}
}

// UnusedReport is the full result of one scan, in scan order.
type UnusedReport struct {
	Findings     []Finding     `json:"findings"`
	Summary      UnusedSummary `json:"summary"`
	CorpusDigest string        `json:"corpus_digest,omitempty"`
}

// NewUnusedReport creates an empty report.
func NewUnusedReport() *UnusedReport {
	return &UnusedReport{
		Findings: make([]Finding, 0),
		Summary:  NewUnusedSummary(),
	}
}

// Add appends a finding and updates the summary.
func (r *UnusedReport) Add(f Finding) {
	r.Findings = append(r.Findings, f)
	r.Summary.AddFinding(f)
}

// Empty reports whether no unused methods were found.
func (r *UnusedReport) Empty() bool {
	return len(r.Findings) == 0
}
