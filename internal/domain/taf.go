package domain

import (
	"regexp"
	"strings"
)

var tafPrefixRe = regexp.MustCompile(`^\d{12}\s+`)

// AssembleTAF folds TAF issuances spread over several archive lines into one
// report each, in archive order.
//
// A line that closes an open issuance is not consumed: the cursor stays on it
// and it is classified again with no issuance open.
func AssembleTAF(lines []string) []Report {
	var a tafAssembler
	for i := 0; i < len(lines); {
		line := strings.TrimRight(lines[i], " \t\r")

		switch ClassifyLine(line, ReportTAF, a.open) {
		case LineTafStart:
			a.start(line)
		case LineTafContinuation:
			a.append(line)
		default:
			if a.open {
				a.flush()
				continue
			}
		}
		i++
	}
	a.flush()
	return a.reports
}

// tafAssembler is the Idle/InTaf state machine; open is the InTaf state.
type tafAssembler struct {
	open    bool
	buf     []string
	reports []Report
}

func (a *tafAssembler) start(line string) {
	if a.open {
		a.flush()
	}
	a.buf = append(a.buf[:0], tafPrefixRe.ReplaceAllString(line, ""))
	a.open = true
}

func (a *tafAssembler) append(line string) {
	a.buf = append(a.buf, strings.TrimSpace(line))
}

func (a *tafAssembler) flush() {
	a.open = false
	if len(a.buf) == 0 {
		return
	}
	text := collapseSpaces(strings.Join(a.buf, " "))
	a.buf = a.buf[:0]

	if strings.Contains(text, "TAF") && zuluRe.MatchString(text) {
		a.reports = append(a.reports, newReport(text))
	}
}
