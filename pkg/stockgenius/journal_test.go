package stockgenius

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAdviceFillsDefaults(t *testing.T) {
	core := newJournalCore(t, Options{})
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	fixedClock(core, start)

	saved, err := core.RecordAdvice(context.Background(), AdviceRecord{
		Kind:     AdviceReport,
		Provider: "openai",
		Content:  "report body",
	})
	require.NoError(t, err)
	assert.Len(t, saved.ID, 36)
	assert.Equal(t, start.Add(time.Second), saved.CreatedAt)

	history, err := core.ListAdviceHistory(context.Background(), AdviceReport, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, saved.ID, history[0].ID)
	assert.True(t, saved.CreatedAt.Equal(history[0].CreatedAt))
	assert.Nil(t, history[0].Amount)
	assert.Nil(t, history[0].PeriodMonths)
	assert.Empty(t, history[0].Model)
}

func TestRecordAdviceRejectsUnknownKind(t *testing.T) {
	core := newJournalCore(t, Options{})
	_, err := core.RecordAdvice(context.Background(), AdviceRecord{Kind: "weekly", Provider: "x"})
	assert.Equal(t, ErrCodeInvalidInput, CodeOf(err))
}

func TestListAdviceHistoryOrderingAndFilter(t *testing.T) {
	core := newJournalCore(t, Options{})
	fixedClock(core, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	kinds := []AdviceKind{AdviceRecommendation, AdviceSimulation, AdviceRecommendation, AdviceReport}
	for i, kind := range kinds {
		_, err := core.RecordAdvice(ctx, AdviceRecord{Kind: kind, Provider: "stub", Content: fmt.Sprintf("entry %d", i)})
		require.NoError(t, err)
	}

	all, err := core.ListAdviceHistory(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "entry 3", all[0].Content)
	assert.Equal(t, "entry 0", all[3].Content)

	recs, err := core.ListAdviceHistory(ctx, AdviceRecommendation, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "entry 2", recs[0].Content)
	assert.Equal(t, "entry 0", recs[1].Content)

	limited, err := core.ListAdviceHistory(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "entry 3", limited[0].Content)

	_, err = core.ListAdviceHistory(ctx, "daily", 0)
	assert.Equal(t, ErrCodeInvalidInput, CodeOf(err))
}

func TestListAdviceHistoryLimits(t *testing.T) {
	core := newJournalCore(t, Options{})
	ctx := context.Background()
	for i := 0; i < defaultHistoryLimit+5; i++ {
		_, err := core.RecordAdvice(ctx, AdviceRecord{Kind: AdviceSimulation, Provider: "stub"})
		require.NoError(t, err)
	}

	def, err := core.ListAdviceHistory(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, def, defaultHistoryLimit)

	capped, err := core.ListAdviceHistory(ctx, "", maxHistoryLimit+50)
	require.NoError(t, err)
	assert.Len(t, capped, defaultHistoryLimit+5)
}

func TestJournalDisabled(t *testing.T) {
	core := newTestCore(t, Options{})
	assert.False(t, core.JournalEnabled())

	_, err := core.RecordAdvice(context.Background(), AdviceRecord{Kind: AdviceReport})
	assert.Equal(t, ErrCodeDatabase, CodeOf(err))

	_, err = core.ListAdviceHistory(context.Background(), "", 0)
	assert.Equal(t, ErrCodeDatabase, CodeOf(err))
}

func TestAdviceKindValid(t *testing.T) {
	assert.True(t, AdviceRecommendation.Valid())
	assert.True(t, AdviceSimulation.Valid())
	assert.True(t, AdviceReport.Valid())
	assert.False(t, AdviceKind("").Valid())
	assert.False(t, AdviceKind("REPORT").Valid())
}
