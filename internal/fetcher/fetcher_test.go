/*
 * Copyright (C) 2023 Ahton
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	delay    time.Duration
	failing  map[string]bool
	inFlight atomic.Int64
	maxSeen  atomic.Int64
}

func (g *fakeGetter) Vacancy(ctx context.Context, id string) ([]byte, error) {
	current := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)

	for {
		seen := g.maxSeen.Load()
		if current <= seen || g.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}

	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if g.failing[id] {
		return nil, errors.New("not found")
	}
	return []byte(fmt.Sprintf(`{"id":"%s"}`, id)), nil
}

type memorySink struct {
	mu      sync.Mutex
	records []string
	stamps  []time.Time
}

func (s *memorySink) Append(stamp time.Time, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, string(body))
	s.stamps = append(s.stamps, stamp)
	return nil
}

func ids(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("%d", i))
	}
	return out
}

func TestFetch_AllVacancies(t *testing.T) {
	getter := &fakeGetter{delay: 5 * time.Millisecond}
	sink := &memorySink{}
	stamp := time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC)

	progress, err := New(getter, sink, 4, 10*time.Millisecond).Fetch(context.Background(), stamp, ids(20))
	require.NoError(t, err)

	assert.Equal(t, 20, progress.Fetched())
	assert.Zero(t, progress.Failed())
	assert.Equal(t, 20, progress.Total())
	assert.Equal(t, "Progress(vacancies=20, failed=0) from 20", progress.String())

	require.Len(t, sink.records, 20)
	sort.Strings(sink.records)
	assert.Contains(t, sink.records, `{"id":"7"}`)
	for _, s := range sink.stamps {
		assert.Equal(t, stamp, s)
	}
}

func TestFetch_BoundedConcurrency(t *testing.T) {
	getter := &fakeGetter{delay: 10 * time.Millisecond}

	_, err := New(getter, &memorySink{}, 3, time.Second).Fetch(context.Background(), time.Now(), ids(30))
	require.NoError(t, err)

	assert.LessOrEqual(t, getter.maxSeen.Load(), int64(3))
	assert.Equal(t, int64(3), getter.maxSeen.Load())
}

func TestFetch_FailuresAreCounted(t *testing.T) {
	getter := &fakeGetter{failing: map[string]bool{"1": true, "3": true}}
	sink := &memorySink{}

	progress, err := New(getter, sink, 2, time.Second).Fetch(context.Background(), time.Now(), ids(5))
	require.NoError(t, err)

	assert.Equal(t, 3, progress.Fetched())
	assert.Equal(t, 2, progress.Failed())
	assert.Len(t, sink.records, 3)
}

func TestFetch_Empty(t *testing.T) {
	progress, err := New(&fakeGetter{}, &memorySink{}, 2, time.Second).Fetch(context.Background(), time.Now(), nil)
	require.NoError(t, err)
	assert.Zero(t, progress.Fetched())
	assert.Zero(t, progress.Total())
}

func TestFetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	progress, err := New(&fakeGetter{}, &memorySink{}, 2, time.Second).Fetch(ctx, time.Now(), ids(10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, progress.Fetched())
}

func TestFetch_CounterIsPerCall(t *testing.T) {
	fetcher := New(&fakeGetter{}, &memorySink{}, 2, time.Second)

	first, err := fetcher.Fetch(context.Background(), time.Now(), ids(4))
	require.NoError(t, err)
	second, err := fetcher.Fetch(context.Background(), time.Now(), ids(2))
	require.NoError(t, err)

	assert.Equal(t, 4, first.Fetched())
	assert.Equal(t, 2, second.Fetched())
}

type detailGetter struct{}

func (detailGetter) Vacancy(_ context.Context, id string) ([]byte, error) {
	return []byte(fmt.Sprintf(`{
		"id": "%s",
		"name": "Go Developer",
		"employer": {"name": "Acme"},
		"area": {"name": "Moscow"},
		"alternate_url": "https://hh.ru/vacancy/%s",
		"description": "<p>Hello <strong>world</strong></p>"
	}`, id, id)), nil
}

func TestFetch_DebugSummary(t *testing.T) {
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	hook := test.NewGlobal()
	t.Cleanup(func() {
		log.SetLevel(level)
		log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
	})

	progress, err := New(detailGetter{}, &memorySink{}, 2, time.Second).Fetch(context.Background(), time.Now(), ids(3))
	require.NoError(t, err)
	assert.Equal(t, 3, progress.Fetched())

	dumped := make(map[string]*log.Entry)
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Vacancy dumped" {
			dumped[entry.Data["id"].(string)] = entry
		}
	}
	require.Len(t, dumped, 3)

	entry := dumped["1"]
	require.NotNil(t, entry)
	assert.Equal(t, log.DebugLevel, entry.Level)
	assert.Equal(t, "Go Developer", entry.Data["name"])
	assert.Equal(t, "Acme", entry.Data["employer"])
	assert.Equal(t, "Moscow", entry.Data["area"])
	assert.Equal(t, "https://hh.ru/vacancy/1", entry.Data["link"])
	assert.Equal(t, "Hello world", entry.Data["description"])
}
