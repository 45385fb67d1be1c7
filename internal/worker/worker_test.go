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

package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Ahton89/vacancies_dumper/internal/configuration"
	"github.com/Ahton89/vacancies_dumper/internal/hh"
	"github.com/Ahton89/vacancies_dumper/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu           sync.Mutex
	listings     map[string][]string
	detailErrors map[string]bool
	dictErrors   map[string]bool
	listCalls    int
}

func (a *fakeAPI) Vacancies(_ context.Context, query hh.ListingQuery) (hh.Page, error) {
	a.mu.Lock()
	a.listCalls++
	a.mu.Unlock()

	ids := a.listings[query.Area+"/"+query.Specialization]
	return hh.Page{IDs: ids, Page: query.Page, Pages: 1}, nil
}

func (a *fakeAPI) Vacancy(_ context.Context, id string) ([]byte, error) {
	if a.detailErrors[id] {
		return nil, fmt.Errorf("%w: 404", hh.ErrUnexpectedStatus)
	}
	return []byte(fmt.Sprintf(`{"id":"%s"}`, id)), nil
}

func (a *fakeAPI) Dictionary(_ context.Context, name string) ([]byte, error) {
	if a.dictErrors[name] {
		return nil, errors.New("unavailable")
	}
	return []byte(fmt.Sprintf(`[{"dictionary":"%s"}]`, name)), nil
}

type memorySink struct {
	mu      sync.Mutex
	records []string
}

func (s *memorySink) Append(_ time.Time, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, string(body))
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	welcomes []notify.Filters
	reports  []notify.CycleReport
}

func (n *recordingNotifier) WelcomeMessage(_ context.Context, filters notify.Filters) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, filters)
	return nil
}

func (n *recordingNotifier) Notify(_ context.Context, report notify.CycleReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, report)
	return nil
}

func (n *recordingNotifier) reportCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reports)
}

func (n *recordingNotifier) cycles() []notify.CycleReport {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.CycleReport(nil), n.reports...)
}

func (a *fakeAPI) listingCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listCalls
}

func waitStopped(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func testConfig(t *testing.T) configuration.Configuration {
	return configuration.Configuration{
		Interval:          20 * time.Millisecond,
		PoolSize:          2,
		ProgressInterval:  time.Second,
		SearchPeriod:      1,
		AreaIDs:           []string{"1", "2"},
		SpecializationIDs: []string{"1.117"},
		DataFile:          "vacancies.txt",
		DumpDictionaries:  true,
		DictionariesDir:   t.TempDir(),
	}
}

func newTestAPI() *fakeAPI {
	return &fakeAPI{
		listings: map[string][]string{
			"1/1.117": {"10", "11", "12"},
			"2/1.117": {"12", "13"},
		},
		detailErrors: map[string]bool{"13": true},
		dictErrors:   map[string]bool{},
	}
}

func TestWorker_RunOnce(t *testing.T) {
	config := testConfig(t)
	api := newTestAPI()
	sink := &memorySink{}
	notifier := &recordingNotifier{}

	w := New(config, api, sink, notifier, new(sync.WaitGroup)).(*worker)
	stamp := time.Date(2018, time.June, 1, 9, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return stamp }

	report, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.Id)
	assert.Equal(t, 5, report.Listed)
	assert.Equal(t, 4, report.Unique)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.Cancelled)
	assert.Equal(t, "vacancies.txt", report.DataFile)

	assert.ElementsMatch(t, []string{`{"id":"10"}`, `{"id":"11"}`, `{"id":"12"}`}, sink.records)

	require.Len(t, notifier.reports, 1)
	assert.Equal(t, report, notifier.reports[0])

	for _, name := range []string{"Areas", "Specializations"} {
		_, err = os.Stat(filepath.Join(config.DictionariesDir, fmt.Sprintf("20180601_090000_%s.txt", name)))
		assert.NoError(t, err, name)
	}
}

func TestWorker_RunOnceDictionaryFailureIsNotFatal(t *testing.T) {
	config := testConfig(t)
	api := newTestAPI()
	api.dictErrors["areas"] = true
	sink := &memorySink{}

	report, err := New(config, api, sink, &recordingNotifier{}, new(sync.WaitGroup)).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Fetched)
}

func TestWorker_RunOnceWithoutDictionaries(t *testing.T) {
	config := testConfig(t)
	config.DumpDictionaries = false

	_, err := New(config, newTestAPI(), &memorySink{}, &recordingNotifier{}, new(sync.WaitGroup)).RunOnce(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(config.DictionariesDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWorker_RunOnceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	notifier := &recordingNotifier{}

	report, err := New(testConfig(t), newTestAPI(), &memorySink{}, notifier, new(sync.WaitGroup)).RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, report.Cancelled)
	// the interrupted cycle is still reported
	assert.Equal(t, 1, notifier.reportCount())
}

func TestWorker_StartLoopsUntilCancelled(t *testing.T) {
	config := testConfig(t)
	config.DumpDictionaries = false
	api := newTestAPI()
	notifier := &recordingNotifier{}
	wg := new(sync.WaitGroup)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg.Add(1)
	go New(config, api, &memorySink{}, notifier, wg).Start(ctx)

	require.Eventually(t, func() bool {
		return notifier.reportCount() >= 3
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()

	assert.Len(t, notifier.welcomes, 1)
	assert.Equal(t, []string{"1", "2"}, notifier.welcomes[0].Areas)

	// every cycle is a full re-scan with the same unique set
	for _, report := range notifier.reports {
		if !report.Cancelled {
			assert.Equal(t, 4, report.Unique)
		}
	}
}

func TestWorker_StartSleepsIntervalBetweenCycles(t *testing.T) {
	config := testConfig(t)
	config.DumpDictionaries = false
	config.Interval = 50 * time.Millisecond
	notifier := &recordingNotifier{}
	wg := new(sync.WaitGroup)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg.Add(1)
	go New(config, newTestAPI(), &memorySink{}, notifier, wg).Start(ctx)

	require.Eventually(t, func() bool {
		return notifier.reportCount() >= 3
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	waitStopped(t, wg)

	reports := notifier.cycles()
	for i := 1; i < len(reports); i++ {
		gap := reports[i].Started.Sub(reports[i-1].Started)
		assert.GreaterOrEqual(t, gap, config.Interval, "cycle %d started %s after the previous one", i, gap)
	}
}

func TestWorker_StartCancelledWhileSleeping(t *testing.T) {
	config := testConfig(t)
	config.DumpDictionaries = false
	config.Interval = time.Hour
	api := newTestAPI()
	notifier := &recordingNotifier{}
	wg := new(sync.WaitGroup)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg.Add(1)
	go New(config, api, &memorySink{}, notifier, wg).Start(ctx)

	require.Eventually(t, func() bool {
		return notifier.reportCount() == 1
	}, 5*time.Second, 5*time.Millisecond)
	calls := api.listingCalls()

	cancel()
	waitStopped(t, wg)

	assert.Equal(t, 1, notifier.reportCount())
	assert.Equal(t, calls, api.listingCalls())
	assert.False(t, notifier.cycles()[0].Cancelled)
}
