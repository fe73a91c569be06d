package rws

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Required input columns, matched by exact header name.
const (
	ColTimestamp = "Timestamp"
	ColAzimuth   = "Azimuth(deg)"
	ColElevation = "Elevation(deg)"
	ColDistance  = "Distance(m)"
	ColRWS       = "RWS(m/s)"
	ColCNR       = "CNR(dB)"
)

// timestampLayouts are tried in order when parsing the Timestamp column.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006/01/02 15:04:05",
}

// Load reads a delimited lidar return file and produces the ordered record
// sequence. A missing file, malformed row, or missing required column yields
// a *LoadError.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return records, nil
}

// ReadRecords parses CSV lidar returns from r. The first row must be a
// header containing all required columns; extra columns are ignored.
func ReadRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		rec, err := parseRow(row, cols, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// columnIndexes maps each required column to its position in the header.
type columnIndexes struct {
	timestamp int
	azimuth   int
	elevation int
	distance  int
	rws       int
	cnr       int
}

func resolveColumns(header []string) (columnIndexes, error) {
	idx := map[string]int{}
	for i, name := range header {
		idx[name] = i
	}

	cols := columnIndexes{}
	var missing []string
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{ColTimestamp, &cols.timestamp},
		{ColAzimuth, &cols.azimuth},
		{ColElevation, &cols.elevation},
		{ColDistance, &cols.distance},
		{ColRWS, &cols.rws},
		{ColCNR, &cols.cnr},
	} {
		i, ok := idx[c.name]
		if !ok {
			missing = append(missing, c.name)
			continue
		}
		*c.dst = i
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("missing required columns: %v", missing)
	}
	return cols, nil
}

func parseRow(row []string, cols columnIndexes, line int) (Record, error) {
	var rec Record

	maxIdx := cols.timestamp
	for _, i := range []int{cols.azimuth, cols.elevation, cols.distance, cols.rws, cols.cnr} {
		if i > maxIdx {
			maxIdx = i
		}
	}
	if len(row) <= maxIdx {
		return rec, fmt.Errorf("invalid record at line %d: expected at least %d fields, got %d", line, maxIdx+1, len(row))
	}

	ts, err := parseTimestamp(row[cols.timestamp])
	if err != nil {
		return rec, fmt.Errorf("invalid timestamp at line %d: %v", line, err)
	}
	rec.Timestamp = ts

	for _, f := range []struct {
		name string
		src  string
		dst  *float64
	}{
		{"azimuth", row[cols.azimuth], &rec.AzimuthDeg},
		{"elevation", row[cols.elevation], &rec.ElevationDeg},
		{"distance", row[cols.distance], &rec.DistanceM},
		{"rws", row[cols.rws], &rec.RWSMps},
		{"cnr", row[cols.cnr], &rec.CNRDb},
	} {
		v, err := strconv.ParseFloat(f.src, 64)
		if err != nil {
			return rec, fmt.Errorf("invalid %s at line %d: %v", f.name, line, err)
		}
		*f.dst = v
	}

	return rec, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp format %q", s)
}
