// Package input reads raw source exports into tabular form. It is an
// I/O collaborator: the normalization engine never touches bytes.
package input

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kiriyama-dx/hcpmix/internal/model"
)

// UnavailableError reports raw data that could not be obtained at all:
// missing file, unreachable store, malformed export. Source-fatal.
type UnavailableError struct {
	Path string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Path, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// decoders by the charset names accepted in source configs. The Japanese
// engagement platforms (M3, CareNet, Medpeer) export Shift_JIS.
var decoders = map[string]encoding.Encoding{
	"":          unicode.UTF8,
	"utf-8":     unicode.UTF8,
	"utf8":      unicode.UTF8,
	"shift_jis": japanese.ShiftJIS,
	"shift-jis": japanese.ShiftJIS,
	"sjis":      japanese.ShiftJIS,
	"euc-jp":    japanese.EUCJP,
}

// ReadTable loads a source export from a local path or an http(s) URL
// into an in-memory table. The extension picks the delimiter (.csv or
// .tsv); the charset names the export's encoding, defaulting to UTF-8.
// The first row is the header.
func ReadTable(ctx context.Context, path, charset string) (model.Table, error) {
	dec, ok := decoders[strings.ToLower(charset)]
	if !ok {
		return model.Table{}, &UnavailableError{Path: path, Err: fmt.Errorf("unsupported charset %q", charset)}
	}

	var rc io.ReadCloser
	var err error
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		rc, err = fetch(ctx, path)
	} else {
		rc, err = os.Open(path)
	}
	if err != nil {
		return model.Table{}, &UnavailableError{Path: path, Err: err}
	}
	defer rc.Close()

	tbl, err := parse(rc, dec, delimiterFor(path))
	if err != nil {
		return model.Table{}, &UnavailableError{Path: path, Err: err}
	}
	return tbl, nil
}

func delimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parse(r io.Reader, dec encoding.Encoding, delim rune) (model.Table, error) {
	cr := csv.NewReader(transform.NewReader(r, dec.NewDecoder()))
	cr.Comma = delim
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return model.Table{}, fmt.Errorf("empty export")
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	tbl := model.Table{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Table{}, fmt.Errorf("read row: %w", err)
		}
		row := make(model.Raw, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}
