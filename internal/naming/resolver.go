// Package naming computes filesystem-safe, collision-free output names for
// downloaded bilingual files.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// BilingualExt is the fixed extension of bilingual exports.
const BilingualExt = ".mxliff"

// placeholder replaces names that sanitize down to nothing.
const placeholder = "unnamed"

// Mode selects how downloaded jobs are aggregated into files.
type Mode int

const (
	// ModeMerged writes one file per language, covering all of its jobs.
	ModeMerged Mode = iota
	// ModePerJob writes one file per job.
	ModePerJob
)

func (m Mode) String() string {
	if m == ModePerJob {
		return "per-job"
	}
	return "merged"
}

// Request carries the metadata a file name is derived from.
type Request struct {
	ProjectName  string
	TargetLang   string
	WorkflowAbbr string // empty when no workflow step applies
	Mode         Mode
	// OriginalFilename is the job's source file name; used in per-job mode.
	OriginalFilename string
}

// Sanitize strips every character that is not a letter, digit, space,
// hyphen, or underscore, then trims trailing whitespace. An empty result
// becomes the fixed placeholder.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	out := strings.TrimRight(b.String(), " \t")
	if out == "" {
		return placeholder
	}
	return out
}

// FolderName returns the per-language subfolder name:
// <lang> or <lang>_<abbr> when a workflow abbreviation is present.
func (r Request) FolderName() string {
	lang := Sanitize(r.TargetLang)
	if r.WorkflowAbbr != "" {
		return lang + "_" + Sanitize(r.WorkflowAbbr)
	}
	return lang
}

// FileName returns the output file name before collision resolution.
// Merged mode: <project>_<lang>[_<abbr>].mxliff
// Per-job mode: <originalBase>_<lang>[_<abbr>].mxliff
func (r Request) FileName() string {
	var stem string
	switch r.Mode {
	case ModePerJob:
		base := strings.TrimSuffix(r.OriginalFilename, filepath.Ext(r.OriginalFilename))
		stem = Sanitize(base)
	default:
		stem = Sanitize(r.ProjectName)
	}

	stem += "_" + Sanitize(r.TargetLang)
	if r.WorkflowAbbr != "" {
		stem += "_" + Sanitize(r.WorkflowAbbr)
	}
	return stem + BilingualExt
}

// numberedName inserts " (n)" before the extension.
func numberedName(filename string, n int) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}
