package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/evdnx/turtle/types"
	"github.com/pkg/errors"
)

// LoadCSV reads daily bars for one symbol from a CSV file with headers
// time|timestamp|date, open, high, low, close, volume. Headers are
// case-insensitive, unknown columns are ignored and the result is sorted by
// time ascending.
func LoadCSV(path, symbol string) ([]types.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open bars")
	}
	defer f.Close()
	bars, err := ReadCSV(f, symbol)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return bars, nil
}

// ReadCSV is LoadCSV over an arbitrary reader. Rows with a missing or
// unparseable time or close are skipped; a bad price column is an error.
func ReadCSV(r io.Reader, symbol string) ([]types.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var headers []string
	var out []types.Bar
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if headers == nil {
			for _, h := range rec {
				headers = append(headers, strings.ToLower(strings.TrimSpace(h)))
			}
			continue
		}
		row := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(rec) {
				row[h] = strings.TrimSpace(rec[j])
			}
		}
		ts := first(row, "time", "timestamp", "date")
		cp := first(row, "close")
		if ts == "" || cp == "" {
			continue
		}
		at, err := parseTimeFlexible(ts)
		if err != nil {
			continue
		}
		b := types.Bar{Symbol: symbol, Time: at}
		fields := []struct {
			dst  *float64
			keys []string
		}{
			{&b.Close, []string{"close"}},
			{&b.Open, []string{"open"}},
			{&b.High, []string{"high"}},
			{&b.Low, []string{"low"}},
			{&b.Volume, []string{"volume", "vol"}},
		}
		for _, fd := range fields {
			s := first(row, fd.keys...)
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d column %s", line, fd.keys[0])
			}
			*fd.dst = v
		}
		// Close-only files still give a usable channel.
		if b.High == 0 {
			b.High = b.Close
		}
		if b.Low == 0 {
			b.Low = b.Close
		}
		if b.Open == 0 {
			b.Open = b.Close
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// parseTimeFlexible supports RFC3339, 2006-01-02 or UNIX seconds.
func parseTimeFlexible(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, errors.Errorf("bad time: %s", s)
}

// first returns the first non-empty value for keys in m.
func first(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
