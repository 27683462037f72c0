// Package rinex parses GPS broadcast ephemerides from RINEX navigation files.
//
// Parsing is deliberately lenient: any numeric field that fails to parse
// (blank, truncated, malformed) becomes 0.0 instead of an error, and a record
// whose header line is shorter than the fixed-width minimum is dropped whole.
// Structurally bad input therefore degrades to zero-filled fields rather than
// aborting the file.
package rinex

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pnt/pntgo/internal/gnsstime"
	"github.com/pnt/pntgo/internal/metrics"
)

const (
	// minHeaderLineLen is the minimum width of a record's first line: satellite
	// ID, epoch, and three 19-column clock fields.
	minHeaderLineLen = 79

	fieldWidth       = 19 // width of one fixed-width numeric field
	dataLineSkip     = 4  // leading columns of each continuation line
	continuationRows = 7  // continuation lines per record
	fieldsPerRow     = 4
)

// Parse reads RINEX navigation data from r and returns the records in file
// order. Header lines are skipped through the END OF HEADER marker. Records
// with a short first line are skipped with a warning log; individual
// unparseable fields default to zero silently.
func Parse(r io.Reader, logger *slog.Logger) (EphemerisSet, error) {
	scanner := bufio.NewScanner(r)

	// Skip the file header.
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), "END OF HEADER") {
			break
		}
	}

	var records EphemerisSet
	var skipped int
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < minHeaderLineLen {
			logger.Warn("skipping short navigation record line", "length", len(line))
			skipped++
			continue
		}

		rec := parseHeaderLine(line)

		// A record truncated by end-of-file keeps zero defaults for the
		// missing lines.
		for row := 0; row < continuationRows && scanner.Scan(); row++ {
			parseDataLine(&rec, scanner.Text(), row)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading navigation data: %w", err)
	}

	metrics.RecordParse(len(records), skipped)
	logger.Debug("navigation data parsed", "records", len(records), "skipped", skipped)
	return records, nil
}

// ParseFile opens and parses the navigation file at path. An unreadable path
// is an error; there is no partial result.
func ParseFile(path string, logger *slog.Logger) (EphemerisSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening navigation file: %w", err)
	}
	defer f.Close()

	records, err := Parse(f, logger)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// parseHeaderLine decodes the first line of a record: satellite ID in columns
// 2-3, civil epoch in columns 4-23, then the three clock terms. The caller
// has already checked the minimum length; the last clock field may be cut
// short on a 79-column line and parses leniently.
func parseHeaderLine(line string) EphemerisRecord {
	rec := EphemerisRecord{
		SatID:          parseInt(line[1:3]),
		Epoch:          parseEpoch(line[3:23]),
		ClockBias:      parseFloat(column(line, 23)),
		ClockDrift:     parseFloat(column(line, 42)),
		ClockDriftRate: parseFloat(column(line, 61)),
	}
	rec.GPSMillis = epochGPSMillis(rec.Epoch)
	return rec
}

// column returns the 19-column field starting at start, clamped to the end of
// the line.
func column(line string, start int) string {
	if start >= len(line) {
		return ""
	}
	end := start + fieldWidth
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

// parseDataLine decodes continuation line row (0-based) into rec. Each line
// carries up to four 19-column fields after a 4-column lead-in; fields beyond
// the end of a short line keep their zero default.
func parseDataLine(rec *EphemerisRecord, line string, row int) {
	if row < 0 || row >= continuationRows {
		return
	}

	var fields [fieldsPerRow]float64
	for i := range fields {
		fields[i] = parseFloat(column(line, dataLineSkip+i*fieldWidth))
	}

	// Positional field layout of the GPS legacy navigation message, one row
	// per RINEX "broadcast orbit" line.
	dest := [continuationRows][fieldsPerRow]*float64{
		{&rec.IODE, &rec.Crs, &rec.DeltaN, &rec.M0},
		{&rec.Cuc, &rec.Eccentricity, &rec.Cus, &rec.SqrtA},
		{&rec.Toe, &rec.Cic, &rec.Omega0, &rec.Cis},
		{&rec.I0, &rec.Crc, &rec.Omega, &rec.OmegaDot},
		{&rec.IDOT, &rec.CodesOnL2, &rec.GPSWeek, &rec.L2PFlag},
		{&rec.SVAccuracy, &rec.SVHealth, &rec.TGD, &rec.IODC},
		{&rec.TransmissionTime, &rec.FitInterval, nil, nil},
	}
	for i, p := range dest[row] {
		if p != nil {
			*p = fields[i]
		}
	}
}

// parseEpoch decodes the six whitespace-separated epoch integers
// (Y M D h m s). Missing or malformed components default to zero.
func parseEpoch(s string) Epoch {
	parts := strings.Fields(s)
	get := func(i int) int {
		if i >= len(parts) {
			return 0
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0
		}
		return n
	}
	return Epoch{
		Year:  get(0),
		Month: get(1),
		Day:   get(2),
		Hour:  get(3),
		Min:   get(4),
		Sec:   get(5),
	}
}

func epochGPSMillis(e Epoch) float64 {
	t := time.Date(e.Year, time.Month(e.Month), e.Day, e.Hour, e.Min, e.Sec, 0, time.UTC)
	return gnsstime.GPSMillis(t)
}

// parseFloat decodes a fixed-width numeric field, accepting the Fortran-style
// D exponent marker. Unparseable fields yield 0.0.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, "D", "E"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return v
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
