package extraction

import (
	"unicode/utf8"

	"github.com/jonathan/resume-mailer/internal/patterns"
	"github.com/jonathan/resume-mailer/internal/types"
)

const (
	maxExperienceLines = 20
	highlightMinChars  = 50
)

// experienceFold accumulates completed entries plus the one being filled in.
type experienceFold struct {
	entries []types.ExperienceEntry
	pending *types.ExperienceEntry
}

func (f *experienceFold) step(line string) {
	if dates := patterns.FindTokens(patterns.ExperienceDate, line); len(dates) > 0 {
		f.flush()
		start, end := dateRange(dates)
		f.pending = &types.ExperienceEntry{
			Start:       start,
			End:         end,
			Description: line,
			Highlights:  []string{},
		}
		return
	}
	if f.pending == nil || line == "" {
		return
	}
	switch {
	case utf8.RuneCountInString(line) > highlightMinChars:
		f.pending.Highlights = append(f.pending.Highlights, line)
	case f.pending.Title == "":
		f.pending.Title = line
	case f.pending.Company == "":
		f.pending.Company = line
	}
}

func (f *experienceFold) flush() {
	if f.pending != nil {
		f.entries = append(f.entries, *f.pending)
		f.pending = nil
	}
}

// ExtractExperience turns the experience section into at most five entries.
// A line carrying a date starts a new entry; short lines after it fill the
// title and then the company, long lines become highlights.
func ExtractExperience(lines []string) []types.ExperienceEntry {
	if len(lines) > maxExperienceLines {
		lines = lines[:maxExperienceLines]
	}

	f := &experienceFold{}
	for _, line := range lines {
		f.step(line)
	}
	f.flush()

	if len(f.entries) > types.MaxExperiencesPerDocument {
		f.entries = f.entries[:types.MaxExperiencesPerDocument]
	}
	if f.entries == nil {
		return []types.ExperienceEntry{}
	}
	return f.entries
}

// dateRange returns the first two date tokens, repeating the first when there is only one.
func dateRange(dates []string) (start, end string) {
	switch len(dates) {
	case 0:
		return "", ""
	case 1:
		return dates[0], dates[0]
	default:
		return dates[0], dates[1]
	}
}
