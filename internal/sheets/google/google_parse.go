package google

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

// valuesToCSV renders a values matrix as CSV, skipping rows that are
// entirely empty. Sheets trims trailing empty cells, so rows are left short.
func valuesToCSV(values [][]interface{}) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range values {
		cols := toStrings(row)
		if strings.TrimSpace(strings.Join(cols, "")) == "" {
			continue
		}
		if err := w.Write(cols); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// columnName converts a 1-based column index to its letter name.
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
