package tickets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Accepted Created_At layouts, tried in order. Values matching none of these
// become the zero time (missing) rather than failing the load.
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	ds      *Dataset
}

var (
	cacheMu sync.Mutex
	cache   = map[string]cacheEntry{}
)

// Load reads the ticket CSV at path into a Dataset. Results are memoized per
// path keyed by file mtime and size, so repeated calls with an unchanged file
// reuse the parsed table. A missing file or a malformed table is an error the
// caller is expected to treat as fatal.
func Load(path string) (*Dataset, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	cacheMu.Lock()
	if e, ok := cache[path]; ok && e.modTime.Equal(st.ModTime()) && e.size == st.Size() {
		cacheMu.Unlock()
		Debugf("load: cache hit for %s (%d rows)", path, e.ds.Len())
		return e.ds, nil
	}
	cacheMu.Unlock()

	ds, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	cacheMu.Lock()
	cache[path] = cacheEntry{modTime: st.ModTime(), size: st.Size(), ds: ds}
	cacheMu.Unlock()
	Infof("load: parsed %s (%d rows)", path, ds.Len())
	return ds, nil
}

// Invalidate drops the memoized Dataset for path, forcing the next Load to
// re-read the file even if mtime and size are unchanged.
func Invalidate(path string) {
	cacheMu.Lock()
	delete(cache, path)
	cacheMu.Unlock()
}

func parseFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, col)
		}
	}

	ds := &Dataset{Path: path}
	line := 1
	missingDates := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line+1, err)
		}
		line++
		t := Ticket{
			ID:        rec[idx[ColTicketID]],
			Channel:   rec[idx[ColChannel]],
			IssueType: rec[idx[ColIssueType]],
		}
		if ts, ok := parseCreatedAt(rec[idx[ColCreatedAt]]); ok {
			t.Created = ts
		} else {
			missingDates++
		}
		if t.ResponseMinutes, err = parseFloat(rec[idx[ColResponseMinutes]], ColResponseMinutes, line); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if t.ResolutionMinutes, err = parseFloat(rec[idx[ColResolutionMinutes]], ColResolutionMinutes, line); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if t.CSAT, err = parseFloat(rec[idx[ColCSATScore]], ColCSATScore, line); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		happy, err := parseFloat(rec[idx[ColCSATBinary]], ColCSATBinary, line)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if happy != 0 {
			t.Happy = 1
		}
		ds.Tickets = append(ds.Tickets, t)
	}
	if missingDates > 0 {
		Warnf("load: %d of %d rows have an unparsable %s (kept as missing)", missingDates, len(ds.Tickets), ColCreatedAt)
	}
	return ds, nil
}

func parseCreatedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s, col string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %v", line, col, err)
	}
	return v, nil
}
