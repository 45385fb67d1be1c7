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
	"sync"
	"time"

	"github.com/Ahton89/vacancies_dumper/internal/configuration"
	"github.com/Ahton89/vacancies_dumper/internal/datafile"
	"github.com/Ahton89/vacancies_dumper/internal/enumerator"
	"github.com/Ahton89/vacancies_dumper/internal/fetcher"
	"github.com/Ahton89/vacancies_dumper/internal/hh"
	"github.com/Ahton89/vacancies_dumper/internal/metrics"
	"github.com/Ahton89/vacancies_dumper/internal/notify"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const notifyTimeout = 10 * time.Second

func New(config configuration.Configuration, api API, sink fetcher.Sink, notifier notify.Notifier, wg *sync.WaitGroup) Worker {
	return &worker{
		config:     config,
		wg:         wg,
		api:        api,
		notifier:   notifier,
		enumerator: enumerator.New(api, config.SearchPeriod),
		fetcher:    fetcher.New(api, sink, config.PoolSize, config.ProgressInterval),
		now:        time.Now,
	}
}

// Start runs scan cycles back to back, sleeping Interval after each one, until ctx is done.
func (w *worker) Start(ctx context.Context) {
	defer log.WithFields(log.Fields{
		"name":  "dumper",
		"state": "stopped",
	}).Info("Worker")

	defer w.wg.Done()

	log.WithFields(log.Fields{
		"name":  "dumper",
		"state": "started",
	}).Info("Worker")

	err := w.notifier.WelcomeMessage(ctx, w.filters())
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("WelcomeMessage")
	}

	timer := time.NewTimer(w.config.Interval)
	defer timer.Stop()

	for {
		_, err = w.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Cycle")
		}

		log.WithFields(log.Fields{
			"next": w.now().Add(w.config.Interval).Format(datafile.RecordTimeLayout),
		}).Info("Sleeping until next cycle")

		timer.Reset(w.config.Interval)

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// RunOnce performs one full scan: dictionaries, listing, details.
func (w *worker) RunOnce(ctx context.Context) (notify.CycleReport, error) {
	started := w.now()
	report := notify.CycleReport{
		Id:       uuid.NewString(),
		Started:  started,
		DataFile: w.config.DataFile,
	}

	log.WithFields(log.Fields{"cycle": report.Id}).Info("Parsing data...")

	if w.config.DumpDictionaries {
		err := w.DumpDictionaries(ctx, started, hh.DictionaryAreas, hh.DictionarySpecializations)
		if err != nil {
			if ctx.Err() != nil {
				return w.finish(report, ctx.Err())
			}
			log.WithFields(log.Fields{
				"cycle": report.Id,
				"error": err,
			}).Error("Dictionaries")
		}
	}

	listing, err := w.enumerator.Enumerate(ctx, w.config.AreaIDs, w.config.SpecializationIDs)
	report.Listed = listing.Listed
	report.Unique = len(listing.IDs)
	report.FailedPairs = listing.FailedPairs
	if err != nil {
		return w.finish(report, err)
	}

	progress, err := w.fetcher.Fetch(ctx, started, listing.IDs)
	report.Fetched = progress.Fetched()
	report.Failed = progress.Failed()

	return w.finish(report, err)
}

// DumpDictionaries stores the requested API dictionaries as timestamped snapshots.
func (w *worker) DumpDictionaries(ctx context.Context, stamp time.Time, names ...string) error {
	errs := make([]error, 0)

	for _, name := range names {
		body, err := w.api.Dictionary(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		path, err := datafile.WriteSnapshot(w.config.DictionariesDir, name, stamp, body)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		log.WithFields(log.Fields{
			"dictionary": name,
			"file":       path,
		}).Info("Dictionary saved")
	}

	return errors.Join(errs...)
}

func (w *worker) finish(report notify.CycleReport, err error) (notify.CycleReport, error) {
	report.Duration = w.now().Sub(report.Started)
	report.Cancelled = err != nil

	status := "ok"
	if report.Cancelled {
		status = "cancelled"
	}

	metrics.CyclesTotal.WithLabelValues(status).Inc()
	metrics.CycleDuration.Observe(report.Duration.Seconds())
	metrics.VacanciesListed.Set(float64(report.Listed))
	metrics.VacanciesUnique.Set(float64(report.Unique))

	log.WithFields(log.Fields{
		"cycle":            report.Id,
		"status":           status,
		"all_vacancies":    report.Listed,
		"unique_vacancies": report.Unique,
		"fetched":          report.Fetched,
		"failed":           report.Failed,
		"failed_listings":  report.FailedPairs,
		"duration":         report.Duration.Round(time.Millisecond),
	}).Info("Parsing data complete")

	// The report goes out even when the cycle was interrupted
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	notifyErr := w.notifier.Notify(ctx, report)
	if notifyErr != nil {
		log.WithFields(log.Fields{
			"cycle": report.Id,
			"error": notifyErr,
		}).Error("Notify")
	}

	return report, err
}

func (w *worker) filters() notify.Filters {
	return notify.Filters{
		Areas:           w.config.AreaIDs,
		Specializations: w.config.SpecializationIDs,
		Interval:        w.config.Interval,
		PoolSize:        w.config.PoolSize,
	}
}
