// Command segment prints the syllabification of each argument.
//
//	segment [--mode exact|greedy] [--count k] [--max-len n] [--dsn url] word...
//
// In exact mode without --count, every syllable count from 1 to the word
// length is tried and the first success is printed. With --dsn, the rows a
// previous conversion stored for the same key are printed after it.
//
// Exit codes: 0 = success, 1 = a word failed, 2 = usage error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/heartmarshall/pinyin-dict/internal/adapter/postgres"
	"github.com/heartmarshall/pinyin-dict/internal/adapter/postgres/syllabification"
	"github.com/heartmarshall/pinyin-dict/internal/config"
	"github.com/heartmarshall/pinyin-dict/internal/domain"
	"github.com/heartmarshall/pinyin-dict/internal/pinyin"
)

// recordFinder looks up stored conversions of a key.
type recordFinder interface {
	FindByKey(ctx context.Context, key string) ([]domain.Record, error)
}

var _ recordFinder = (*syllabification.Repo)(nil)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()

	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("segment", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modeFlag := fs.String("mode", "greedy", "segmentation mode: exact or greedy")
	countFlag := fs.Int("count", 0, "target syllable count for exact mode")
	maxLenFlag := fs.Int("max-len", pinyin.DefaultMaxInputLen, "longest input accepted in exact mode, in bytes")
	dsnFlag := fs.String("dsn", "", "PostgreSQL DSN to look up stored syllabifications")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	mode, err := domain.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: segment [--mode exact|greedy] [--count k] [--dsn url] word...")
		return 2
	}

	var finder recordFinder
	if *dsnFlag != "" {
		pool, err := postgres.NewPool(ctx, config.DatabaseConfig{DSN: *dsnFlag, MaxConns: 2})
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer pool.Close()
		finder = syllabification.New(pool, postgres.NewTxManager(pool))
	}

	return segmentAll(ctx, pinyin.NewSegmenter(*maxLenFlag), finder, fs.Args(), *countFlag, mode, stdout, stderr)
}

func segmentAll(ctx context.Context, seg *pinyin.Segmenter, finder recordFinder, words []string, count int, mode domain.Mode, stdout, stderr io.Writer) int {
	code := 0
	for _, word := range words {
		key := domain.NormalizeKey(word)
		syllables, err := segment(seg, key, count, mode)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", word, err)
			code = 1
			continue
		}
		fmt.Fprintf(stdout, "%s\t=>\t%s\n", word, strings.Join(syllables, " "))

		if finder == nil {
			continue
		}
		stored, err := finder.FindByKey(ctx, key)
		if err != nil {
			fmt.Fprintf(stderr, "%s: lookup: %v\n", word, err)
			code = 1
			continue
		}
		for _, rec := range stored {
			fmt.Fprintf(stdout, "\tstored\t%s\t%s\t%s\n", rec.Entry, rec.Pinyin(), rec.Mode)
		}
	}
	return code
}

// segment runs one strategy. Exact mode with no count returns the split
// with the fewest syllables.
func segment(seg *pinyin.Segmenter, key string, count int, mode domain.Mode) ([]string, error) {
	if mode != domain.ModeExact || count > 0 {
		return seg.Segment(key, count, mode)
	}

	for k := 1; k <= len(key); k++ {
		out, err := seg.SegmentExact(key, k)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, domain.ErrNoSegmentation) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("segment %q: %w", key, domain.ErrNoSegmentation)
}
