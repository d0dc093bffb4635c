package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/refstats"
	"github.com/richard-senior/refstats/pkg/util"
)

// Format is the encoding of a match source
type Format string

const (
	FormatCSV    Format = "csv"
	FormatHTML   Format = "html"
	FormatSQLite Format = "sqlite"
)

// Options control how raw tables are turned into match tables
type Options struct {
	// Aliases extends DefaultAliases
	Aliases map[string][]string `yaml:"aliases"`
	// NormalizeSeasons rewrites 2019/20 style seasons as 2019-2020
	NormalizeSeasons bool `yaml:"normalize_seasons"`
	// KeepUnplayed reports fixtures with no score as invalid instead of dropping them
	KeepUnplayed bool `yaml:"keep_unplayed"`
	// TableSelector picks the results table out of an HTML page
	TableSelector string `yaml:"table_selector"`
}

// ReadCSV parses a CSV export into a match table.
// Rows are read with encoding/csv so ragged and header-only files still
// reach the dataframe stage with a header to validate.
func ReadCSV(r io.Reader, opts Options) (*refstats.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, &refstats.MissingColumnsError{Missing: append([]string(nil), refstats.CanonicalColumns...)}
	}
	return fromRecords(records, opts)
}

/**
 * ReadHTML extracts the first table matching opts.TableSelector (default "table")
 * from an HTML page. The header is taken from th cells, or from the first row
 * when the table has none.
 */
func ReadHTML(r io.Reader, opts Options) (*refstats.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	sel := opts.TableSelector
	if sel == "" {
		sel = "table"
	}
	table := doc.Find(sel).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table matching %q found", sel)
	}

	var records [][]string
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		var rec []string
		row.Find("th, td").Each(func(j int, cell *goquery.Selection) {
			rec = append(rec, strings.TrimSpace(cell.Text()))
		})
		if len(rec) > 0 {
			records = append(records, rec)
		}
	})
	if len(records) == 0 {
		return nil, fmt.Errorf("table %q has no rows", sel)
	}
	return fromRecords(records, opts)
}

// fromRecords loads header + rows through the same dataframe path as CSV
func fromRecords(records [][]string, opts Options) (*refstats.Table, error) {
	width := len(records[0])
	for i := range records {
		// pad or trim ragged rows so the dataframe accepts them
		for len(records[i]) < width {
			records[i] = append(records[i], "")
		}
		records[i] = records[i][:width]
	}
	if len(records) == 1 {
		// header only, nothing for the dataframe to hold
		header := canonicalHeader(records[0], opts.Aliases)
		if err := refstats.CheckColumns(header); err != nil {
			return nil, err
		}
		return refstats.NewTable(nil), nil
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to load records: %w", df.Err)
	}
	return fromDataFrame(df, opts)
}

func fromDataFrame(df dataframe.DataFrame, opts Options) (*refstats.Table, error) {
	df = normaliseColumns(df, opts.Aliases)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to rename columns: %w", df.Err)
	}
	if err := refstats.CheckColumns(df.Names()); err != nil {
		return nil, err
	}
	rowNums := make([]int, df.Nrow())
	for i := range rowNums {
		rowNums[i] = i + 1
	}
	df = df.Select(refstats.CanonicalColumns).Mutate(series.New(rowNums, series.Int, sourceRowCol))
	if df.Err != nil {
		return nil, fmt.Errorf("failed to select columns: %w", df.Err)
	}

	if !opts.KeepUnplayed {
		before := df.Nrow()
		df = df.Filter(
			dataframe.F{Colname: refstats.ColHomeGoals, Comparator: series.CompFunc, Comparando: played},
		).Filter(
			dataframe.F{Colname: refstats.ColAwayGoals, Comparator: series.CompFunc, Comparando: played},
		)
		if df.Err != nil {
			return nil, fmt.Errorf("failed to drop unplayed fixtures: %w", df.Err)
		}
		if dropped := before - df.Nrow(); dropped > 0 {
			logger.Debug("Dropped unplayed fixtures", dropped)
		}
	}

	records := df.Records()
	header := records[0][:len(refstats.CanonicalColumns)]
	hg, ag := indexOf(header, refstats.ColHomeGoals), indexOf(header, refstats.ColAwayGoals)
	rows := make([][]string, 0, len(records)-1)
	sourceRows := make([]int, 0, len(records)-1)
	for _, rec := range records[1:] {
		n, err := strconv.Atoi(rec[len(header)])
		if err != nil {
			return nil, fmt.Errorf("bad source row %q: %w", rec[len(header)], err)
		}
		row := rec[:len(header)]
		// NA style goal cells come back from the dataframe as NaN
		for _, i := range []int{hg, ag} {
			if row[i] == "NaN" {
				row[i] = ""
			}
		}
		rows = append(rows, row)
		sourceRows = append(sourceRows, n)
	}

	if opts.NormalizeSeasons {
		col := indexOf(header, refstats.ColSeason)
		for r, row := range rows {
			s, err := util.NormalizeSeason(row[col])
			if err != nil {
				return nil, &refstats.InvalidRecordError{Row: sourceRows[r], Column: refstats.ColSeason, Value: row[col], Reason: err.Error()}
			}
			row[col] = s
		}
	}

	t, err := refstats.NewTableFromSourceRows(header, rows, sourceRows)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded matches", t.Len())
	return t, nil
}

// sourceRowCol carries each record's 1-based data row through filtering
const sourceRowCol = "source_row"

// played is false for blank or NA goal cells
func played(el series.Element) bool {
	return !el.IsNA() && strings.TrimSpace(el.String()) != ""
}

func indexOf(vals []string, v string) int {
	for i, s := range vals {
		if s == v {
			return i
		}
	}
	return -1
}
