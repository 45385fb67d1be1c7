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
	"sync"
	"time"

	"github.com/Ahton89/vacancies_dumper/internal/hh"
	"github.com/Ahton89/vacancies_dumper/internal/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func New(getter Getter, sink Sink, poolSize int, progressInterval time.Duration) *Fetcher {
	return &Fetcher{
		getter:           getter,
		sink:             sink,
		poolSize:         poolSize,
		progressInterval: progressInterval,
	}
}

// Fetch downloads every vacancy with at most poolSize requests in flight and
// appends each body to the sink stamped with the cycle time. Single failures are
// counted, not returned. The error is non-nil only when ctx ends before all ids
// were scheduled.
func (f *Fetcher) Fetch(ctx context.Context, stamp time.Time, ids []string) (*Progress, error) {
	progress := &Progress{total: len(ids)}

	done := make(chan struct{})
	reporter := new(sync.WaitGroup)
	reporter.Add(1)
	go f.report(done, reporter, progress)

	group := new(errgroup.Group)
	group.SetLimit(f.poolSize)

	var err error
	for _, id := range ids {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}

		group.Go(func() error {
			f.fetch(ctx, stamp, id, progress)
			return nil
		})
	}

	_ = group.Wait()

	close(done)
	reporter.Wait()

	log.WithFields(log.Fields{
		"fetched": progress.Fetched(),
		"failed":  progress.Failed(),
		"total":   progress.Total(),
	}).Info("Fetching done")

	return progress, err
}

func (f *Fetcher) fetch(ctx context.Context, stamp time.Time, id string, progress *Progress) {
	body, err := f.getter.Vacancy(ctx, id)
	if err == nil {
		err = f.sink.Append(stamp, body)
	}

	if err != nil {
		progress.failed.Add(1)
		metrics.VacanciesFetched.WithLabelValues("failed").Inc()

		entry := log.WithFields(log.Fields{
			"id":    id,
			"error": err,
		})
		if ctx.Err() != nil {
			entry.Debug("Vacancy")
		} else {
			entry.Error("Vacancy")
		}
		return
	}

	progress.fetched.Add(1)
	metrics.VacanciesFetched.WithLabelValues("ok").Inc()

	if log.IsLevelEnabled(log.DebugLevel) {
		vacancy := hh.Summarize(body)
		log.WithFields(log.Fields{
			"id":          id,
			"name":        vacancy.Name,
			"employer":    vacancy.Employer,
			"area":        vacancy.Area,
			"published":   vacancy.Published,
			"link":        vacancy.Link,
			"description": vacancy.Description,
		}).Debug("Vacancy dumped")
	}
}

func (f *Fetcher) report(done <-chan struct{}, wg *sync.WaitGroup, progress *Progress) {
	defer wg.Done()

	ticker := time.NewTicker(f.progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			log.Info(progress.String())
		}
	}
}
