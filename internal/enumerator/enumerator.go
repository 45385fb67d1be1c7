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

package enumerator

import (
	"context"
	"fmt"

	"github.com/Ahton89/vacancies_dumper/internal/hh"
	"github.com/Ahton89/vacancies_dumper/internal/metrics"
	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

func New(lister Lister, period int) *Enumerator {
	return &Enumerator{
		lister: lister,
		period: period,
	}
}

// Enumerate walks the listing for every area and specialization pair and returns
// the deduplicated vacancy ids. An empty filter list means the filter is not applied.
// A pair that fails is logged and skipped, only cancellation aborts the walk.
func (e *Enumerator) Enumerate(ctx context.Context, areas, specializations []string) (Result, error) {
	// Fresh set every call, each cycle is a full re-scan
	seen := cache.New(cache.NoExpiration, 0)
	result := Result{IDs: make([]string, 0)}

	if len(areas) == 0 {
		areas = []string{""}
	}
	if len(specializations) == 0 {
		specializations = []string{""}
	}

	for _, area := range areas {
		log.WithFields(log.Fields{"area": area}).Info("Getting vacancies from area")

		for _, specialization := range specializations {
			err := e.walk(ctx, area, specialization, seen, &result)
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}

				result.FailedPairs++
				log.WithFields(log.Fields{
					"area":           area,
					"specialization": specialization,
					"error":          err,
				}).Error("Listing")
			}
		}
	}

	log.WithFields(log.Fields{
		"all_vacancies":    result.Listed,
		"unique_vacancies": len(result.IDs),
		"pages":            result.Pages,
		"failed_pairs":     result.FailedPairs,
	}).Info("Listing done")

	return result, nil
}

func (e *Enumerator) walk(ctx context.Context, area, specialization string, seen *cache.Cache, result *Result) error {
	for page := 0; ; page++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		listing, err := e.lister.Vacancies(ctx, hh.ListingQuery{
			Area:           area,
			Specialization: specialization,
			Page:           page,
			PerPage:        PerPage,
			Period:         e.period,
		})
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}

		result.Pages++
		result.Listed += len(listing.IDs)
		metrics.ListingPages.Inc()

		for _, id := range listing.IDs {
			// Add fails for keys already present
			if seen.Add(id, struct{}{}, cache.NoExpiration) == nil {
				result.IDs = append(result.IDs, id)
			}
		}

		log.WithFields(log.Fields{
			"area":           area,
			"specialization": specialization,
			"page":           page,
			"pages":          listing.Pages,
			"items":          len(listing.IDs),
		}).Debug("Listing page")

		if len(listing.IDs) == 0 || page+1 >= listing.Pages {
			return nil
		}
	}
}
