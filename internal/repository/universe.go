package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"SwingRank/pkg/util"
)

// LoadUniverse reads symbols from a CSV file. The column named "Symbol" is
// used when present (any case), otherwise the first column. Blank and
// duplicate symbols are dropped and file order is kept.
func LoadUniverse(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe: %w", err)
	}
	defer f.Close()
	return ReadUniverse(f)
}

// ReadUniverse is LoadUniverse over any reader.
func ReadUniverse(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	col := 0
	var symbols []string
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read universe: %w", err)
		}
		if first {
			first = false
			if idx := headerIndex(rec); idx >= 0 {
				col = idx
				continue
			}
		}
		if col < len(rec) {
			symbols = append(symbols, rec[col])
		}
	}
	return util.NormalizeSymbols(symbols), nil
}

func headerIndex(rec []string) int {
	for i, h := range rec {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), "symbol") {
			return i
		}
	}
	return -1
}
