package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

const sampleDict = `# source dictionary
zhongguo 中国
agentingdui 阿根廷队

xian 西安 先
nvhai 女孩
`

// mockSink records every chunk it receives.
type mockSink struct {
	mu      sync.Mutex
	name    string
	err     error
	calls   int
	records []domain.Record
}

func (m *mockSink) Name() string { return m.name }

func (m *mockSink) Write(_ context.Context, records []domain.Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	m.records = append(m.records, records...)
	return len(records), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.dict")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testOptions(t *testing.T, input string) Options {
	t.Helper()
	return Options{
		InputPath:  writeInput(t, input),
		OutputPath: filepath.Join(t.TempDir(), "out.dict.yaml"),
		Mode:       domain.ModeExact,
		BatchSize:  2,
		Workers:    4,
	}
}

// readBody returns the output rows after the YAML header.
func readBody(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, body, found := strings.Cut(string(data), "...\n")
	require.True(t, found, "header terminator missing")
	if body == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(body, "\n"), "\n")
}

func TestPipeline_ExactMode(t *testing.T) {
	opts := testOptions(t, sampleDict)

	result, err := NewPipeline(discardLogger(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"中国\tzhong guo\t0",
		"阿根廷队\ta gen ting dui\t0",
		"西安\txi an\t1",
		"先\txian\t0",
		"女孩\tnv hai\t0",
	}, readBody(t, opts.OutputPath))

	assert.Equal(t, 4, result.Lines)
	assert.Equal(t, 5, result.Entries)
	assert.Equal(t, 5, result.Segmented)
	assert.Equal(t, 5, result.Rows)
	assert.Zero(t, result.Failed)
	assert.Zero(t, result.Fallbacks)
	assert.Equal(t, 6, result.Input.TotalLines)
	assert.Equal(t, 2, result.Input.SkippedLines)
	assert.NotZero(t, result.RunID)
}

func TestPipeline_GreedyMode(t *testing.T) {
	opts := testOptions(t, "xian 先\nhaoer 好儿\n")
	opts.Mode = domain.ModeGreedy

	_, err := NewPipeline(discardLogger(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"先\txian\t0",
		"好儿\thao er\t0",
	}, readBody(t, opts.OutputPath))
}

func TestPipeline_HeaderFromOptions(t *testing.T) {
	opts := testOptions(t, "xian 先\n")
	opts.Header.Name = "custom_dict"
	opts.Header.Version = "2.0"

	_, err := NewPipeline(discardLogger(), opts).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: custom_dict\n")
	assert.Contains(t, string(data), "version: \"2.0\"\n")
}

func TestPipeline_FailedSegmentationWritesEmptyField(t *testing.T) {
	opts := testOptions(t, "qqq 啊啊\nxian 先\n")

	result, err := NewPipeline(discardLogger(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"啊啊\t\t0",
		"先\txian\t0",
	}, readBody(t, opts.OutputPath))
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Segmented)
}

func TestPipeline_FallbackGreedy(t *testing.T) {
	opts := testOptions(t, "qqq 啊啊\n")
	opts.FallbackGreedy = true

	sink := &mockSink{name: "mock"}
	result, err := NewPipeline(discardLogger(), opts, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"啊啊\tq q q\t0"}, readBody(t, opts.OutputPath))
	assert.Equal(t, 1, result.Fallbacks)
	assert.Zero(t, result.Failed)

	require.Len(t, sink.records, 1)
	assert.True(t, sink.records[0].Fallback)
	assert.True(t, sink.records[0].Segmented)
}

func TestPipeline_GreedyLongKeyIsSegmented(t *testing.T) {
	key := strings.Repeat("ba", 33)
	opts := testOptions(t, key+" 词\n")
	opts.Mode = domain.ModeGreedy

	result, err := NewPipeline(discardLogger(), opts).Run(context.Background())
	require.NoError(t, err)

	want := strings.TrimSpace(strings.Repeat("ba ", 33))
	assert.Equal(t, []string{"词\t" + want + "\t0"}, readBody(t, opts.OutputPath))
	assert.Equal(t, 1, result.Segmented)
	assert.Zero(t, result.Failed)
}

func TestPipeline_MixedCaseKeyIsFolded(t *testing.T) {
	opts := testOptions(t, "xiAn 西安\nXian 先\n")

	sink := &mockSink{name: "mock"}
	result, err := NewPipeline(discardLogger(), opts, sink).Run(context.Background())
	require.NoError(t, err)

	// Only the first byte gates a dictionary line; the rest of the key is
	// lowercased before segmentation.
	assert.Equal(t, []string{"西安\txi an\t0"}, readBody(t, opts.OutputPath))
	assert.Equal(t, 1, result.Input.SkippedLines)
	require.Len(t, sink.records, 1)
	assert.Equal(t, "xian", sink.records[0].Key)
}

func TestPipeline_ExactKeyOverBudgetFails(t *testing.T) {
	opts := testOptions(t, "zhangsanlisi 张三李四\n")
	opts.MaxInputLen = 8
	opts.FallbackGreedy = true

	result, err := NewPipeline(discardLogger(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"张三李四\t\t0"}, readBody(t, opts.OutputPath))
	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, result.Fallbacks)
}

func TestPipeline_PreservesOrderAcrossWorkers(t *testing.T) {
	keys := []string{"xian", "nvhai", "zhongguo", "fangan", "ai"}
	entries := []string{"先", "女孩", "中国", "方案", "爱"}
	want := []string{"xian", "nv hai", "zhong guo", "fan gan", "ai"}

	var input strings.Builder
	var expected []string
	for i := range 300 {
		k := i % len(keys)
		fmt.Fprintf(&input, "%s %s\n", keys[k], entries[k])
		expected = append(expected, fmt.Sprintf("%s\t%s\t0", entries[k], want[k]))
	}

	opts := testOptions(t, input.String())
	opts.BatchSize = 7
	opts.Workers = 16

	sink := &mockSink{name: "mock"}
	result, err := NewPipeline(discardLogger(), opts, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, expected, readBody(t, opts.OutputPath))
	assert.Equal(t, 300, result.Lines)
	assert.Equal(t, 300, result.SinkWrites["mock"])

	require.Len(t, sink.records, 300)
	for i, rec := range sink.records {
		assert.Equal(t, i+1, rec.Line)
	}
	assert.Equal(t, 43, sink.calls)
}

func TestPipeline_SinkReceivesRunMetadata(t *testing.T) {
	opts := testOptions(t, "xi'an 西安\n")

	sink := &mockSink{name: "mock"}
	result, err := NewPipeline(discardLogger(), opts, sink).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, result.RunID, rec.RunID)
	assert.Equal(t, 1, rec.Line)
	assert.Equal(t, "xian", rec.Key)
	assert.Equal(t, []string{"xi", "an"}, rec.Syllables)
	assert.Equal(t, domain.ModeExact, rec.Mode)
	assert.NotEqual(t, rec.RunID, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestPipeline_DryRun(t *testing.T) {
	opts := testOptions(t, sampleDict)
	opts.DryRun = true

	sink := &mockSink{name: "mock"}
	result, err := NewPipeline(discardLogger(), opts, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Entries)
	assert.Equal(t, 5, result.Segmented)
	assert.Zero(t, sink.calls)
	assert.Zero(t, result.Rows)
	assert.NoFileExists(t, opts.OutputPath)
}

func TestPipeline_SinkErrorAborts(t *testing.T) {
	opts := testOptions(t, sampleDict)

	sinkErr := errors.New("connection refused")
	sink := &mockSink{name: "broken", err: sinkErr}
	_, err := NewPipeline(discardLogger(), opts, sink).Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, sinkErr)
	assert.Contains(t, err.Error(), "sink broken")
	assert.Equal(t, 1, sink.calls)
}

func TestPipeline_MissingInput(t *testing.T) {
	opts := testOptions(t, "")
	opts.InputPath = filepath.Join(t.TempDir(), "missing.dict")

	_, err := NewPipeline(discardLogger(), opts).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipeline_EmptyInputWritesHeaderOnly(t *testing.T) {
	opts := testOptions(t, "# nothing here\n")

	result, err := NewPipeline(discardLogger(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, readBody(t, opts.OutputPath))
	assert.Zero(t, result.Lines)
}

func TestPipeline_CanceledContext(t *testing.T) {
	opts := testOptions(t, sampleDict)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(discardLogger(), opts).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Metrics(t *testing.T) {
	opts := testOptions(t, "qqq 啊啊\n"+sampleDict)
	opts.MetricsPath = filepath.Join(t.TempDir(), "converter.prom")

	sink := &mockSink{name: "mock"}
	p := NewPipeline(discardLogger(), opts, sink)
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	m := p.Metrics()
	assert.Equal(t, 5.0, testutil.ToFloat64(m.LinesTotal))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.EntriesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("exact")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.SinkWritesTotal.WithLabelValues("mock")))

	data, err := os.ReadFile(opts.MetricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pinyin_converter_lines_total 5")
	assert.Contains(t, string(data), `pinyin_converter_sink_writes_total{sink="mock"} 6`)
}
