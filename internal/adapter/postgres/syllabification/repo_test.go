//go:build integration

package syllabification_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postgres "github.com/heartmarshall/pinyin-dict/internal/adapter/postgres"
	"github.com/heartmarshall/pinyin-dict/internal/adapter/postgres/syllabification"
	"github.com/heartmarshall/pinyin-dict/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

func newRepo(t *testing.T) *syllabification.Repo {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return syllabification.New(pool, postgres.NewTxManager(pool))
}

func record(runID uuid.UUID, key, entry string, syllables []string, weight int) domain.Record {
	return domain.Record{
		ID:        uuid.New(),
		RunID:     runID,
		Line:      1,
		Key:       key,
		Entry:     entry,
		Syllables: syllables,
		Weight:    weight,
		Mode:      domain.ModeExact,
		Segmented: syllables != nil,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRepo_WriteAndFind(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	runID := uuid.New()
	key := "xian-" + runID.String()[:8]

	n, err := repo.Write(ctx, []domain.Record{
		record(runID, key, "先", []string{"xian"}, 1),
		record(runID, key, "西安", []string{"xi", "an"}, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.FindByKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "先", got[0].Entry)
	assert.Equal(t, []string{"xian"}, got[0].Syllables)
	assert.Equal(t, []string{"xi", "an"}, got[1].Syllables)
	assert.Equal(t, domain.ModeExact, got[1].Mode)
	assert.Equal(t, runID, got[1].RunID)
}

func TestRepo_BulkInsert_SkipsDuplicates(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	runID := uuid.New()

	first := record(runID, "zhongguo", "中国", []string{"zhong", "guo"}, 0)
	n, err := repo.Write(ctx, []domain.Record{first})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dup := record(runID, "zhongguo", "中国", []string{"zhong", "guo"}, 0)
	n, err = repo.Write(ctx, []domain.Record{dup})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRepo_FailedRecordsStoreEmptySyllables(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	runID := uuid.New()
	key := "qqq-" + runID.String()[:8]

	_, err := repo.Write(ctx, []domain.Record{record(runID, key, "三个字", nil, 0)})
	require.NoError(t, err)

	got, err := repo.FindByKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Segmented)
	assert.Empty(t, got[0].Syllables)
}

func TestRepo_CountByRun(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	runID := uuid.New()

	_, err := repo.Write(ctx, []domain.Record{
		record(runID, "a", "啊", []string{"a"}, 2),
		record(runID, "a", "阿", []string{"a"}, 1),
		record(runID, "a", "吖吖", nil, 0),
	})
	require.NoError(t, err)

	segmented, failed, err := repo.CountByRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 2, segmented)
	assert.Equal(t, 1, failed)
}

func TestRepo_InvalidModeRollsBackChunk(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	runID := uuid.New()

	good := record(runID, "b", "不", []string{"bu"}, 1)
	bad := record(runID, "b", "部", []string{"bu"}, 0)
	bad.Mode = domain.Mode("viterbi")

	_, err := repo.Write(ctx, []domain.Record{good, bad})
	require.ErrorIs(t, err, domain.ErrValidation)

	segmented, failed, err := repo.CountByRun(ctx, runID)
	require.NoError(t, err)
	assert.Zero(t, segmented+failed)
}
