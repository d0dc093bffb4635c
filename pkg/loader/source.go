package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/richard-senior/refstats/pkg/refstats"
	"github.com/richard-senior/refstats/pkg/store"
	"github.com/richard-senior/refstats/pkg/transport"
)

// Identity names one version of a source. Two loads with the same identity
// are assumed to yield the same table.
type Identity struct {
	Location string    `json:"location"`
	ModTime  time.Time `json:"modTime"`
}

func (id Identity) String() string {
	if id.ModTime.IsZero() {
		return id.Location
	}
	return fmt.Sprintf("%s@%s", id.Location, id.ModTime.Format(time.RFC3339Nano))
}

// Source is somewhere a match table can be read from
type Source interface {
	Identity() (Identity, error)
	Load() (*refstats.Table, error)
}

// DetectFormat guesses the format from a path or URL extension, defaulting to CSV
func DetectFormat(location string) Format {
	ext := strings.ToLower(filepath.Ext(strings.SplitN(location, "?", 2)[0]))
	switch ext {
	case ".html", ".htm":
		return FormatHTML
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return FormatCSV
}

// NewSource picks the Source implementation for location.
// An empty format is detected from the extension.
func NewSource(location string, format Format, opts Options) Source {
	if format == "" {
		format = DetectFormat(location)
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &URLSource{URL: location, Format: format, Options: opts}
	}
	if format == FormatSQLite {
		return &StoreSource{Path: location}
	}
	return &FileSource{Path: location, Format: format, Options: opts}
}

func parse(data []byte, format Format, opts Options) (*refstats.Table, error) {
	switch format {
	case FormatHTML:
		return ReadHTML(bytes.NewReader(data), opts)
	case FormatCSV, "":
		return ReadCSV(bytes.NewReader(data), opts)
	}
	return nil, fmt.Errorf("format %s cannot be parsed from bytes", format)
}

// ////////////////////////////////////////////////////////////////////////
// ////// File
// ////////////////////////////////////////////////////////////////////////

// FileSource reads a CSV or HTML file from disk
type FileSource struct {
	Path    string
	Format  Format
	Options Options
}

func (f *FileSource) Identity() (Identity, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to stat %s: %w", f.Path, err)
	}
	return Identity{Location: f.Path, ModTime: info.ModTime()}, nil
}

func (f *FileSource) Load() (*refstats.Table, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	format := f.Format
	if format == "" {
		format = DetectFormat(f.Path)
	}
	t, err := parse(data, format, f.Options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return t, nil
}

// ////////////////////////////////////////////////////////////////////////
// ////// URL
// ////////////////////////////////////////////////////////////////////////

// URLSource downloads a CSV or HTML results page.
// Its identity is the URL alone so it is fetched once until reloaded.
type URLSource struct {
	URL     string
	Format  Format
	Options Options
	// Fetch defaults to transport.GetBytes
	Fetch func(url string) ([]byte, error)
}

func (u *URLSource) Identity() (Identity, error) {
	return Identity{Location: u.URL}, nil
}

func (u *URLSource) Load() (*refstats.Table, error) {
	fetch := u.Fetch
	if fetch == nil {
		fetch = transport.GetBytes
	}
	data, err := fetch(u.URL)
	if err != nil {
		return nil, err
	}
	format := u.Format
	if format == "" {
		format = DetectFormat(u.URL)
	}
	t, err := parse(data, format, u.Options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u.URL, err)
	}
	return t, nil
}

// ////////////////////////////////////////////////////////////////////////
// ////// SQLite
// ////////////////////////////////////////////////////////////////////////

// StoreSource reads matches previously imported into a sqlite database
type StoreSource struct {
	Path string
}

func (s *StoreSource) Identity() (Identity, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to stat %s: %w", s.Path, err)
	}
	return Identity{Location: s.Path, ModTime: info.ModTime()}, nil
}

func (s *StoreSource) Load() (*refstats.Table, error) {
	st, err := store.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.LoadTable()
}
