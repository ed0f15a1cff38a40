package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/pkg/jobs"
)

type recordingQueue struct {
	jobs []jobs.Job
}

func (q *recordingQueue) TryEnqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func TestSummaryWarmerScheduleWithoutQueue(t *testing.T) {
	var w *SummaryWarmer
	w.Schedule("b1", 1)

	w = NewSummaryWarmer(nil, nil)
	w.Schedule("b1", 1)
}

func TestSummaryWarmerHandlePopulatesCache(t *testing.T) {
	repo := newMemoryCache()
	summaries := newSummaryServiceForTest([]string{"English", "Music", "Arts"})
	summaries.cache = NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	w := NewSummaryWarmer(summaries, nil)

	err := w.Handle(context.Background(), jobs.Job{ID: "b1:1", Type: JobTypeSummaryWarmup, Payload: WarmupTarget{BatchID: "b1", Quarter: 1}})
	require.NoError(t, err)
	assert.Contains(t, repo.entries, "summaries:b1:quarterly:1")
	assert.Contains(t, repo.entries, "summaries:b1:final")

	require.NoError(t, w.Handle(context.Background(), jobs.Job{ID: "bad", Payload: "nope"}))
}

func TestScoreWriteSchedulesWarmupWhenCacheEnabled(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	svc := newClassRecordServiceForTest(newFakeSettingsRepo(englishSettings()), newFakeGradeRepo(), cache)
	queue := &recordingQueue{}
	warmer := NewSummaryWarmer(nil, nil)
	warmer.Attach(queue)
	svc.SetSummaryWarmer(warmer)

	_, err := svc.UpsertScore(context.Background(), ScoreRequest{
		StudentID: "s1", Subject: "English", Quarter: 1, BatchID: "b1",
		Component: ComponentWrittenWorks, Index: 0, Score: intPtr(15),
	})
	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, WarmupTarget{BatchID: "b1", Quarter: 1, Generation: 1}, queue.jobs[0].Payload)
	assert.Contains(t, repo.invalidated, "summaries:b1:*")
}

// writeDuringLoad simulates a score write landing while a rebuild reads settings.
type writeDuringLoad struct {
	*fakeSettingsRepo
	onList func()
}

func (r writeDuringLoad) ListByBatch(ctx context.Context, batchID string, quarter int) ([]models.SubjectQuarterSettings, error) {
	if r.onList != nil {
		r.onList()
	}
	return r.fakeSettingsRepo.ListByBatch(ctx, batchID, quarter)
}

func TestSummaryWarmerDropsRebuildSupersededByWrite(t *testing.T) {
	repo := newMemoryCache()
	summaries := newSummaryServiceForTest([]string{"English"})
	summaries.cache = NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	w := NewSummaryWarmer(summaries, nil)
	queue := &recordingQueue{}
	w.Attach(queue)

	w.Touch("b1")
	w.Schedule("b1", 1)
	require.Len(t, queue.jobs, 1)

	touched := false
	summaries.settings = writeDuringLoad{
		fakeSettingsRepo: newFakeSettingsRepo(englishSettings()),
		onList: func() {
			if !touched {
				touched = true
				w.Touch("b1")
			}
		},
	}

	require.NoError(t, w.Handle(context.Background(), queue.jobs[0]))
	assert.NotContains(t, repo.entries, "summaries:b1:quarterly:1")
	assert.NotContains(t, repo.entries, "summaries:b1:final")
	assert.Contains(t, repo.invalidated, "summaries:b1:*")
}

func TestSummaryWarmerSkipsStaleJob(t *testing.T) {
	repo := newMemoryCache()
	summaries := newSummaryServiceForTest([]string{"English"})
	summaries.cache = NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	w := NewSummaryWarmer(summaries, nil)
	w.Touch("b1")
	w.Touch("b1")

	err := w.Handle(context.Background(), jobs.Job{ID: "old", Payload: WarmupTarget{BatchID: "b1", Quarter: 1, Generation: 1}})
	require.NoError(t, err)
	assert.Empty(t, repo.entries)
}
