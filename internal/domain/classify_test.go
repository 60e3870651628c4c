package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		rt    ReportType
		inTaf bool
		want  LineClass
	}{
		{"blank", "   ", ReportMETAR, false, LineNoise},
		{"html tag", "<pre>202401010000 METAR VOGA 010000Z", ReportMETAR, false, LineNoise},
		{"html comment", "<!-- METAR VOGA -->", ReportMETAR, false, LineNoise},
		{"hash comment", "# METAR listing", ReportMETAR, false, LineNoise},
		{"metar", "202401010000 METAR VOGA 010000Z 12008KT CAVOK 28/22 Q1012 NOSIG=", ReportMETAR, false, LineMetarCandidate},
		{"speci", "202401010000 SPECI VOGA 010012Z 12008KT 3000 RA=", ReportMETAR, false, LineMetarCandidate},
		{"metar mode ignores taf", "202401010500 TAF VOGA 010500Z 0106/0206 09008KT", ReportMETAR, false, LineNoise},
		{"taf start", "202401010500 TAF VOGA 010500Z 0106/0206 09008KT", ReportTAF, false, LineTafStart},
		{"taf amd start", "202401010500 TAF AMD VOGA 010700Z 0107/0206 09008KT", ReportTAF, false, LineTafStart},
		{"taf cor start", "202401010500 TAF COR VOGA 010700Z 0107/0206 09008KT", ReportTAF, false, LineTafStart},
		{"normalized taf start", "TAF VOGA 010500Z 0106/0206 09008KT", ReportTAF, false, LineTafStart},
		{"unprefixed raw taf start", "TAF VOGA 010500Z 0106/0206 09008KT 9999 SCT020=", ReportTAF, false, LineTafStart},
		{"plural taf heading", "TAFs for VOGA", ReportTAF, false, LineNoise},
		{"plural taf heading while open", "TAFs for VOGA", ReportTAF, true, LineTafEnd},
		{"tafor word", "TAFOR VOGA 010500Z", ReportTAF, false, LineNoise},
		{"taf start while open", "202401011100 TAF VOGA 011100Z 0112/0212 09008KT", ReportTAF, true, LineTafStart},
		{"indented continuation", "      BECMG 0110/0112 27012KT", ReportTAF, true, LineTafContinuation},
		{"tab continuation", "\t4000 TSRA", ReportTAF, true, LineTafContinuation},
		{"keyword continuation", "TEMPO 0112/0116 4000 TSRA", ReportTAF, true, LineTafContinuation},
		{"fm continuation", "FM011800 24010KT 9999 FEW020", ReportTAF, true, LineTafContinuation},
		{"prob continuation", "PROB30 0118/0122 3000 BR", ReportTAF, true, LineTafContinuation},
		{"indented line without taf", "      BECMG 0110/0112 27012KT", ReportTAF, false, LineNoise},
		{"end of taf", "End of listing", ReportTAF, true, LineTafEnd},
		{"metar in taf mode", "202401010000 METAR VOGA 010000Z 12008KT", ReportTAF, false, LineNoise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLine(tt.line, tt.rt, tt.inTaf))
		})
	}
}

func TestLineClass_String(t *testing.T) {
	assert.Equal(t, "noise", LineNoise.String())
	assert.Equal(t, "metar_candidate", LineMetarCandidate.String())
	assert.Equal(t, "taf_start", LineTafStart.String())
	assert.Equal(t, "taf_continuation", LineTafContinuation.String())
	assert.Equal(t, "taf_end", LineTafEnd.String())
}
