package domain

import (
	"regexp"
	"strings"
)

// LineClass is the verdict of ClassifyLine for a single raw line.
type LineClass int

const (
	LineNoise LineClass = iota
	LineMetarCandidate
	LineTafStart
	LineTafContinuation
	LineTafEnd
)

func (c LineClass) String() string {
	switch c {
	case LineMetarCandidate:
		return "metar_candidate"
	case LineTafStart:
		return "taf_start"
	case LineTafContinuation:
		return "taf_continuation"
	case LineTafEnd:
		return "taf_end"
	default:
		return "noise"
	}
}

var (
	// tafStartRe matches an issuance header. The 12-digit archive receipt time
	// is optional so that already-normalized files classify the same way.
	tafStartRe = regexp.MustCompile(`^(?:\d{12}\s+)?TAF\b(?:\s+AMD\b|\s+COR\b)?`)

	tafContinuationKeywords = []string{"BECMG", "TEMPO", "FM", "PROB"}
)

// ClassifyLine decides what a raw line is for the given report type. inTaf
// reports whether a TAF issuance is currently open; it is ignored for METAR.
// The line should only be trimmed on the right: leading indentation is how the
// archive marks TAF continuation lines.
func ClassifyLine(line string, rt ReportType, inTaf bool) LineClass {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LineNoise
	}
	if strings.HasPrefix(trimmed, "<") || strings.HasPrefix(trimmed, "#") {
		return LineNoise
	}

	if rt != ReportTAF {
		if strings.Contains(line, "METAR") || strings.Contains(line, "SPECI") {
			return LineMetarCandidate
		}
		return LineNoise
	}

	if tafStartRe.MatchString(line) {
		return LineTafStart
	}
	if !inTaf {
		return LineNoise
	}
	if startsWithSpace(line) || hasContinuationKeyword(line) {
		return LineTafContinuation
	}
	return LineTafEnd
}

func startsWithSpace(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

func hasContinuationKeyword(line string) bool {
	for _, kw := range tafContinuationKeywords {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}
