// Package domain models archived aviation weather bulletins (METAR and TAF)
// and the rules for turning raw archive responses into canonical report files.
//
// # Data Source
//
// Reports come from the OGIMET bulletin archive (display_metars2.php) queried
// one station and one calendar month at a time. The response is either plain
// text or HTML with the bulletins inside a <pre> block, interleaved with
// markup, comments, headers and blank lines.
//
// # Archive Line Conventions
//
// METAR/SPECI lines:
//
//	"<YYYYMMDDHHmm> METAR <ICAO> <DDHHMMZ> ..."  →  e.g.
//	"202401010000 METAR VOGA 010000Z 12008KT CAVOK 28/22 Q1012 NOSIG="
//	The leading 10–14 digit block is the archive's own receipt time and is
//	stripped. Some mirrors instead emit "<label> -> <report>"; only the text
//	after the first "->" is kept.
//
// TAF issuances:
//
//	"<YYYYMMDDHHmm> TAF [AMD|COR] <ICAO> <DDHHMMZ> <validity> ..."
//	followed by zero or more continuation lines that are either indented or
//	start with a change group keyword (BECMG, TEMPO, FM, PROB). An issuance
//	ends at the first line that is neither.
//
// Zulu timestamp:
//
//	Every accepted report carries a DDHHMMZ token (day, hour, minute, UTC).
//	Its six digits are the sort key of the canonical file. Archive months
//	never span two months, so the day-first string order is chronological.
//
// # Canonical Form
//
// One report per line, internal whitespace collapsed to single spaces,
// ascending by Zulu timestamp with ties kept in archive order. Identical
// reports are not removed: the archive stores retransmissions and the files
// mirror it. Files are named {METAR|TAF}{YYYY}{MM}.txt; a year batch lives
// under {METAR|TAF}_{STATION}_{YYYY}.
package domain
