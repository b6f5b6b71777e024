// Package dictfile reads source pinyin dictionaries and writes Rime
// dictionaries. Pure I/O and string splitting: no segmentation, no database.
package dictfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

// ErrSkipLine signals that a line carries no dictionary data (blank,
// comment, header, or missing entries).
var ErrSkipLine = errors.New("skip line")

const readBufferSize = 8 << 20

// Stats holds reader statistics for logging.
type Stats struct {
	TotalLines   int
	SkippedLines int
	ParsedLines  int
	Entries      int
}

// Reader yields parsed dictionary lines one at a time.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	stats   Stats
}

// NewReader wraps r. Lines longer than the scanner buffer fail with an error.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), readBufferSize)
	return &Reader{scanner: sc}
}

// Open opens path for reading, decompressing by extension:
// .gz (gzip), .zst (zstd), .lz4 (lz4), anything else as plain text.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var (
		src    io.Reader = bufio.NewReaderSize(f, readBufferSize)
		closer io.Closer = f
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(src)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		src = zr
		closer = multiCloser{zr, f}
	case ".zst":
		zr, err := zstd.NewReader(src)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open zstd: %w", err)
		}
		src = zr
		closer = multiCloser{zstdCloser{zr}, f}
	case ".lz4":
		src = lz4.NewReader(src)
	}

	r := NewReader(src)
	r.closer = closer
	return r, nil
}

// Next returns the next dictionary line. It returns io.EOF after the last line.
func (r *Reader) Next() (domain.Line, error) {
	for r.scanner.Scan() {
		r.stats.TotalLines++

		line, err := ParseLine(r.stats.TotalLines, r.scanner.Text())
		if errors.Is(err, ErrSkipLine) {
			r.stats.SkippedLines++
			continue
		}
		if err != nil {
			return domain.Line{}, err
		}

		r.stats.ParsedLines++
		r.stats.Entries += len(line.Entries)
		return line, nil
	}

	if err := r.scanner.Err(); err != nil {
		return domain.Line{}, fmt.Errorf("scanner error: %w", err)
	}
	return domain.Line{}, io.EOF
}

// Stats returns counters accumulated so far.
func (r *Reader) Stats() Stats {
	return r.stats
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ParseLine splits a raw line of the form "key entry1 entry2 ..." into a
// domain.Line. Lines that are blank, do not start with an ASCII lowercase
// letter, or have no entries yield ErrSkipLine.
func ParseLine(number int, raw string) (domain.Line, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Line{}, ErrSkipLine
	}
	if c := trimmed[0]; c < 'a' || c > 'z' {
		return domain.Line{}, ErrSkipLine
	}

	key, rest, ok := strings.Cut(trimmed, " ")
	if !ok {
		return domain.Line{}, ErrSkipLine
	}

	entries := strings.Fields(rest)
	if len(entries) == 0 {
		return domain.Line{}, ErrSkipLine
	}

	return domain.Line{
		Number:  number,
		Key:     key,
		Entries: entries,
	}, nil
}

// Weight is the output weight of the entry at idx among count entries:
// the first entry gets the highest weight, the last gets 0.
func Weight(idx, count int) int {
	return count - 1 - idx
}

// EntryLen is the number of characters in entry, used as the target
// syllable count.
func EntryLen(entry string) int {
	return utf8.RuneCountInString(entry)
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}
