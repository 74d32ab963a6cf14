package genesis

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/rbb-data/cpisync/cpi"
	"github.com/rbb-data/cpisync/errors"
)

// Source columns of the ffcsv export.
const (
	ColumnID    = "3_Auspraegung_Code"
	ColumnName  = "3_Auspraegung_Label"
	ColumnYear  = "Zeit"
	ColumnMonth = "2_Auspraegung_Label"
	ColumnValue = "PREIS1__Verbraucherpreisindex__2015=100"
)

// NoData is the cell value GENESIS uses for "not available".
const NoData = "..."

var columns = []string{ColumnID, ColumnName, ColumnYear, ColumnMonth, ColumnValue}

const delimiter = ';'

// ParseFile reads and parses the export at path.
func ParseFile(path string) ([]cpi.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read payload %s", path)
	}
	return Parse(data)
}

// Parse turns a raw ffcsv export into observations, in input order.
//
// Rows whose value is NoData are dropped. Other values that do not parse
// as a number after replacing the decimal comma keep a nil Value. A missing
// column, an unknown month label or a non-integer year is a parse_error.
// An empty or header-only export yields an empty slice.
func Parse(data []byte) ([]cpi.Observation, error) {
	data = normalize(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return []cpi.Observation{}, nil
	}

	headerOnly, err := checkHeader(data)
	if err != nil {
		return nil, err
	}
	if headerOnly {
		return []cpi.Observation{}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(delimiter),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, errors.ParseError("reading table: %s", df.Err.Error())
	}

	df = df.Select(columns)
	if df.Err != nil {
		return nil, errors.ParseError("selecting columns: %s", df.Err.Error())
	}

	ids := df.Col(ColumnID).Records()
	names := df.Col(ColumnName).Records()
	years := df.Col(ColumnYear).Records()
	monthLabels := df.Col(ColumnMonth).Records()
	values := df.Col(ColumnValue).Records()

	observations := make([]cpi.Observation, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		// header is line 1
		row := i + 2

		month, ok := MonthNumber(monthLabels[i])
		if !ok {
			return nil, errors.ParseError("row %d: unknown month %q", row, monthLabels[i])
		}

		year, err := strconv.Atoi(strings.TrimSpace(years[i]))
		if err != nil {
			return nil, errors.ParseError("row %d: invalid year %q", row, years[i])
		}

		rawValue := strings.TrimSpace(values[i])
		if rawValue == NoData {
			continue
		}

		observations = append(observations, cpi.Observation{
			ID:    ids[i],
			Name:  names[i],
			Year:  year,
			Month: month,
			Value: parseValue(rawValue),
		})
	}

	return observations, nil
}

// parseValue normalises the decimal comma and parses the result. Anything
// that is still not a number becomes nil.
func parseValue(raw string) *float64 {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// normalize strips a UTF-8 byte order mark and transcodes ISO-8859-1
// payloads to UTF-8.
func normalize(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

// checkHeader verifies that the header row names every source column and
// reports whether the export has no data rows.
func checkHeader(data []byte) (bool, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return false, errors.ParseError("reading header: %s", err.Error())
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[strings.TrimSpace(name)] = true
	}
	for _, name := range columns {
		if !present[name] {
			return false, errors.ParseError("missing column %q", name)
		}
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, errors.ParseError("reading row: %s", err.Error())
		}
		if len(record) > 1 || strings.TrimSpace(record[0]) != "" {
			return false, nil
		}
	}
}
