package dictfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

const writeBufferSize = 8 << 20

// Header describes the YAML preamble of a Rime dictionary.
type Header struct {
	Name    string
	Version string
	Sort    string
}

// DefaultHeader matches the stock simplified-Chinese pinyin dictionary.
var DefaultHeader = Header{Name: "pinyin_simp", Version: "0.1", Sort: "by_weight"}

const headerTemplate = `# Rime dictionary
# encoding: utf-8
#
# A minimal Pinyin dictionary for simplified Chinese script
#
# Derived from android open source project:
# http://android.git.kernel.org/?p=platform/packages/inputmethods/PinyinIME.git
#

---
name: %s
version: %q
sort: %s
...
`

// Writer emits a Rime dictionary: the header once, then one
// "entry<TAB>syllables<TAB>weight" row per record.
type Writer struct {
	w       *bufio.Writer
	closer  io.Closer
	header  Header
	started bool
	rows    int
}

// NewWriter wraps w with an 8 MiB buffer.
func NewWriter(w io.Writer, header Header) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, writeBufferSize), header: header}
}

// Create creates (or truncates) path and returns a Writer for it.
func Create(path string, header Header) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	wr := NewWriter(f, header)
	wr.closer = f
	return wr, nil
}

// WriteHeader writes the preamble. It is called implicitly by the first
// WriteRecords and is a no-op afterwards.
func (w *Writer) WriteHeader() error {
	if w.started {
		return nil
	}
	w.started = true
	h := w.header
	if h.Name == "" {
		h.Name = DefaultHeader.Name
	}
	if h.Version == "" {
		h.Version = DefaultHeader.Version
	}
	if h.Sort == "" {
		h.Sort = DefaultHeader.Sort
	}
	if _, err := fmt.Fprintf(w.w, headerTemplate, h.Name, h.Version, h.Sort); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// WriteRecords appends records in order.
func (w *Writer) WriteRecords(records []domain.Record) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, r := range records {
		w.w.WriteString(r.Entry)
		w.w.WriteByte('\t')
		w.w.WriteString(r.Pinyin())
		w.w.WriteByte('\t')
		w.w.WriteString(strconv.Itoa(r.Weight))
		if err := w.w.WriteByte('\n'); err != nil {
			return fmt.Errorf("write record %q: %w", r.Entry, err)
		}
		w.rows++
	}
	return nil
}

// Rows returns the number of records written.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file, if any.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		if w.closer != nil {
			w.closer.Close()
		}
		return err
	}
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
