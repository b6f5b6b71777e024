package converter

import (
	"context"

	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

// Sink receives every converted chunk in input order. Write returns the
// number of records the sink accepted.
type Sink interface {
	Name() string
	Write(ctx context.Context, records []domain.Record) (int, error)
}
