package rinex

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pnt/pntgo/internal/gnsstime"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const testHeader = "     3.04           N: GNSS NAV DATA    G: GPS              RINEX VERSION / TYPE\n" +
	"pntgo               test                20230612 000000 UTC PGM / RUN BY / DATE \n" +
	"  18    18  2185     7                                      LEAP SECONDS        \n" +
	"                                                            END OF HEADER       \n"

// f19 renders one 19-column numeric field with a Fortran D exponent.
func f19(v float64) string {
	return strings.Replace(fmt.Sprintf("%19.12E", v), "E", "D", 1)
}

func dataLine(v0, v1, v2, v3 float64) string {
	return fmt.Sprintf("    %s%s%s%s\n", f19(v0), f19(v1), f19(v2), f19(v3))
}

// testRecord renders a full 8-line record with recognizable values in every
// orbital slot.
func testRecord(sat int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "G%02d 2023 06 12 02 00 00%s%s%s\n",
		sat, f19(5.102343857288e-4), f19(-1.170974429958e-11), f19(0))
	b.WriteString(dataLine(61, -102.1875, 4.035882414315e-9, 1.3955941143))
	b.WriteString(dataLine(-5.327165126801e-6, 1.3923335494e-2, 8.424371480942e-6, 5153.6394906901))
	b.WriteString(dataLine(180000, -7.450580596924e-9, -2.2521342896, 1.750886440277e-7))
	b.WriteString(dataLine(0.9620535759, 213.40625, -2.9882653862, -7.661711424589e-9))
	b.WriteString(dataLine(-4.643050562343e-10, 1, 2266, 0))
	b.WriteString(dataLine(2, 0, -1.024454832077e-8, 61))
	fmt.Fprintf(&b, "    %s%s\n", f19(172800), f19(4))
	return b.String()
}

func TestParseRecordFields(t *testing.T) {
	content := testHeader + testRecord(17) + testRecord(5)
	recs, err := Parse(strings.NewReader(content), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	rec := recs[0]
	if rec.SatID != 17 {
		t.Errorf("SatID = %d, want 17", rec.SatID)
	}
	if rec.Epoch != (Epoch{2023, 6, 12, 2, 0, 0}) {
		t.Errorf("Epoch = %+v", rec.Epoch)
	}
	wantMillis := gnsstime.GPSMillis(time.Date(2023, time.June, 12, 2, 0, 0, 0, time.UTC))
	assert.InDelta(t, wantMillis, rec.GPSMillis, 1e-3)

	assert.InDelta(t, 5.102343857288e-4, rec.ClockBias, 1e-18)
	assert.InDelta(t, -1.170974429958e-11, rec.ClockDrift, 1e-24)
	assert.InDelta(t, 61.0, rec.IODE, 1e-9)
	assert.InDelta(t, -102.1875, rec.Crs, 1e-9)
	assert.InDelta(t, 4.035882414315e-9, rec.DeltaN, 1e-21)
	assert.InDelta(t, 1.3955941143, rec.M0, 1e-9)
	assert.InDelta(t, 1.3923335494e-2, rec.Eccentricity, 1e-12)
	assert.InDelta(t, 5153.6394906901, rec.SqrtA, 1e-8)
	assert.InDelta(t, 180000.0, rec.Toe, 1e-9)
	assert.InDelta(t, -2.2521342896, rec.Omega0, 1e-9)
	assert.InDelta(t, 0.9620535759, rec.I0, 1e-9)
	assert.InDelta(t, -2.9882653862, rec.Omega, 1e-9)
	assert.InDelta(t, -7.661711424589e-9, rec.OmegaDot, 1e-21)
	assert.InDelta(t, 2266.0, rec.GPSWeek, 1e-9)
	assert.InDelta(t, -1.024454832077e-8, rec.TGD, 1e-20)
	assert.InDelta(t, 61.0, rec.IODC, 1e-9)
	assert.InDelta(t, 172800.0, rec.TransmissionTime, 1e-9)
	assert.InDelta(t, 4.0, rec.FitInterval, 1e-9)

	// File order preserved.
	if recs[1].SatID != 5 {
		t.Errorf("second record SatID = %d, want 5", recs[1].SatID)
	}
}

// A blank numeric field parses to 0.0 without dropping the record.
func TestParseLenientBlankField(t *testing.T) {
	blank := strings.Repeat(" ", 19)
	rec8 := fmt.Sprintf("G17 2023 06 12 02 00 00%s%s%s\n", f19(1e-4), blank, f19(0)) +
		dataLine(61, 0, 0, 0) +
		fmt.Sprintf("    %s%s%s%s\n", f19(0), blank, f19(0), f19(5153.6)) +
		dataLine(180000, 0, 0, 0) +
		dataLine(0, 0, 0, 0) +
		dataLine(0, 0, 2266, 0) +
		dataLine(2, 0, 0, 61) +
		fmt.Sprintf("    %s%s\n", f19(172800), f19(4))

	recs, err := Parse(strings.NewReader(testHeader+rec8), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].ClockDrift != 0 {
		t.Errorf("blank clock drift = %v, want 0", recs[0].ClockDrift)
	}
	if recs[0].Eccentricity != 0 {
		t.Errorf("blank eccentricity = %v, want 0", recs[0].Eccentricity)
	}
	assert.InDelta(t, 5153.6, recs[0].SqrtA, 1e-9)
}

// A first line shorter than the fixed-width minimum drops the whole record.
func TestParseShortLineSkipsRecord(t *testing.T) {
	content := testHeader + testRecord(17) + "G18 2023 06 12\n"
	recs, err := Parse(strings.NewReader(content), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1 (short record dropped)", len(recs))
	}
	if recs[0].SatID != 17 {
		t.Errorf("surviving record SatID = %d, want 17", recs[0].SatID)
	}
}

// A record truncated by end-of-file keeps zero defaults for the missing lines.
func TestParseTruncatedRecordAtEOF(t *testing.T) {
	lines := strings.SplitAfter(testRecord(17), "\n")
	content := testHeader + strings.Join(lines[:3], "") // first line + 2 continuation lines
	recs, err := Parse(strings.NewReader(content), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	assert.InDelta(t, 61.0, rec.IODE, 1e-9)
	assert.InDelta(t, 5153.6394906901, rec.SqrtA, 1e-8)
	if rec.Toe != 0 || rec.I0 != 0 || rec.FitInterval != 0 {
		t.Errorf("missing lines must stay zero: Toe=%v I0=%v FitInterval=%v", rec.Toe, rec.I0, rec.FitInterval)
	}
}

func TestParseHeaderOnly(t *testing.T) {
	recs, err := Parse(strings.NewReader(testHeader), testLogger())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("got %d records from header-only input, want 0", len(recs))
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile("/nonexistent/brdc.rnx", testLogger()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFilter(t *testing.T) {
	set := EphemerisSet{
		{SatID: 17, Toe: 1},
		{SatID: 5, Toe: 2},
		{SatID: 17, Toe: 3},
	}
	got := set.Filter(17)
	if len(got) != 2 {
		t.Fatalf("Filter(17) returned %d records, want 2", len(got))
	}
	if got[0].Toe != 1 || got[1].Toe != 3 {
		t.Errorf("Filter must preserve file order: got Toe %v, %v", got[0].Toe, got[1].Toe)
	}
	if set.Filter(99) != nil {
		t.Error("Filter for absent satellite must return nil")
	}
}
