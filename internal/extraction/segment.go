// Package extraction builds a CandidateProfile from resume text using line heuristics.
// Every function here is pure and never fails: unrecognised input yields empty fields.
package extraction

import (
	"strings"

	"github.com/jonathan/resume-mailer/internal/patterns"
)

// Sections maps a recognised section to the lines that followed its header.
type Sections map[patterns.Section][]string

// segmenter is the fold state for Segment.
type segmenter struct {
	done    Sections
	current patterns.Section
	open    bool
	run     []string
}

func (s *segmenter) step(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if section, ok := patterns.SectionFor(line); ok {
		s.flush()
		s.current, s.open, s.run = section, true, nil
		return
	}
	if s.open {
		s.run = append(s.run, line)
	}
}

// flush records the pending run. Empty runs never overwrite an earlier one.
func (s *segmenter) flush() {
	if s.open && len(s.run) > 0 {
		s.done[s.current] = s.run
	}
}

// Segment splits lines into sections. Header lines are dropped, as is anything
// before the first header. When a header repeats, the last non-empty run wins.
func Segment(lines []string) Sections {
	s := &segmenter{done: Sections{}}
	for _, line := range lines {
		s.step(line)
	}
	s.flush()
	return s.done
}
