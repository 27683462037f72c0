// Command pntgo computes ECEF positions of a GPS satellite from a RINEX
// broadcast navigation file and writes the resulting states as CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/midbel/toml"

	"github.com/pnt/pntgo/internal/metrics"
	"github.com/pnt/pntgo/internal/orbit"
	"github.com/pnt/pntgo/internal/rinex"
)

// Duration makes time.Duration usable as a flag and a TOML value.
type Duration struct {
	time.Duration
}

func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err == nil {
		d.Duration = v
	}
	return err
}

func (d *Duration) String() string {
	return d.Duration.String()
}

// Settings is the full run configuration. Every field can come from flags or
// from a TOML configuration file; the file wins when both are given.
type Settings struct {
	File     string   `toml:"file"`
	SatID    int      `toml:"satellite"`
	Name     string   `toml:"name"`
	Base     string   `toml:"base"`
	Period   Duration `toml:"duration"`
	Interval Duration `toml:"interval"`
	Workers  int      `toml:"workers"`
	Output   string   `toml:"output"`
	Metrics  string   `toml:"metrics"`
}

// Update overlays s with values from the TOML file at path.
func (s *Settings) Update(path string) error {
	r, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening configuration file: %w", err)
	}
	defer r.Close()

	if err := toml.Decode(r, s); err != nil {
		return fmt.Errorf("decoding configuration file: %w", err)
	}
	return nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	s := Settings{
		SatID:    17,
		Period:   Duration{time.Second},
		Interval: Duration{time.Millisecond},
		Workers:  runtime.NumCPU(),
	}

	flag.IntVar(&s.SatID, "s", s.SatID, "satellite number")
	flag.StringVar(&s.Name, "n", s.Name, "satellite display name")
	flag.StringVar(&s.Base, "b", s.Base, "base time (RFC 3339, default now)")
	flag.Var(&s.Period, "d", "propagation time range")
	flag.Var(&s.Interval, "i", "time step between epochs")
	flag.IntVar(&s.Workers, "workers", s.Workers, "epoch fan-out width")
	flag.StringVar(&s.Output, "w", s.Output, "write states to file (stdout if not provided)")
	flag.StringVar(&s.Metrics, "metrics-file", s.Metrics, "write prometheus metrics to this textfile")
	config := flag.String("config", "", "TOML configuration file")
	flag.Parse()

	if *config != "" {
		if err := s.Update(*config); err != nil {
			logger.Error("invalid configuration", "path", *config, "error", err)
			os.Exit(1)
		}
	}
	if flag.NArg() > 0 {
		s.File = flag.Arg(0)
	}
	if s.File == "" {
		fmt.Fprintln(os.Stderr, "usage: pntgo [options] <navigation file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if s.Name == "" {
		s.Name = fmt.Sprintf("G%02d", s.SatID)
	}

	base := time.Now().UTC()
	if s.Base != "" {
		t, err := time.Parse(time.RFC3339, s.Base)
		if err != nil {
			logger.Error("invalid base time", "value", s.Base, "error", err)
			os.Exit(1)
		}
		base = t.UTC()
	}

	records, err := rinex.ParseFile(s.File, logger)
	if err != nil {
		logger.Error("cannot read navigation file", "path", s.File, "error", err)
		os.Exit(1)
	}
	mine := records.Filter(s.SatID)
	logger.Info("navigation data loaded",
		"path", s.File,
		"total_records", len(records),
		"satellite", s.SatID,
		"filtered_records", len(mine),
	)

	sat := orbit.NewSatellite(s.SatID, s.Name)
	prop := orbit.NewPropagator(orbit.Config{Workers: s.Workers}, logger)

	begin := time.Now()
	n, err := sat.Propagate(prop, base, s.Period.Duration, s.Interval.Duration, mine)
	if err != nil {
		logger.Error("propagation failed", "satellite", s.SatID, "error", err)
		os.Exit(1)
	}
	logger.Info("propagation finished",
		"satellite", sat.Name,
		"states", n,
		"from", base.Format(time.RFC3339Nano),
		"to", base.Add(s.Period.Duration).Format(time.RFC3339Nano),
		"elapsed_ms", float64(time.Since(begin).Microseconds())/1000.0,
	)

	if err := writeStates(s.Output, sat.States); err != nil {
		logger.Error("cannot write states", "path", s.Output, "error", err)
		os.Exit(1)
	}

	if s.Metrics != "" {
		if err := metrics.WriteTextfile(s.Metrics); err != nil {
			logger.Warn("cannot write metrics textfile", "path", s.Metrics, "error", err)
		}
	}
}

// writeStates dumps the state sequence as CSV to path, or to stdout when path
// is empty.
func writeStates(path string, states []orbit.State) error {
	var out io.Writer = os.Stdout
	var f *os.File
	if path != "" {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return err
		}
		out = f
	}

	w := csv.NewWriter(out)
	err := w.Write([]string{"gps_time_s", "ecef_x_m", "ecef_y_m", "ecef_z_m"})
	for i := 0; err == nil && i < len(states); i++ {
		st := states[i]
		err = w.Write([]string{
			strconv.FormatFloat(st.Time, 'f', 3, 64),
			strconv.FormatFloat(st.Position.X, 'f', 3, 64),
			strconv.FormatFloat(st.Position.Y, 'f', 3, 64),
			strconv.FormatFloat(st.Position.Z, 'f', 3, 64),
		})
	}
	if err == nil {
		w.Flush()
		err = w.Error()
	}

	// A close-time flush failure still means the file is incomplete.
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
