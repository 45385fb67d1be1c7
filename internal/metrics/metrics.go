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

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacancies_dumper_cycles_total",
			Help: "Total number of finished scan cycles",
		},
		[]string{"status"},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vacancies_dumper_cycle_duration_seconds",
			Help:    "Duration of a full scan cycle in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		},
	)

	ListingPages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vacancies_dumper_listing_pages_total",
			Help: "Total number of listing pages walked",
		},
	)

	VacanciesListed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vacancies_dumper_vacancies_listed",
			Help: "Vacancies listed during the last cycle, duplicates included",
		},
	)

	VacanciesUnique = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vacancies_dumper_vacancies_unique",
			Help: "Unique vacancies discovered during the last cycle",
		},
	)

	VacanciesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacancies_dumper_vacancies_fetched_total",
			Help: "Total number of vacancy detail fetches",
		},
		[]string{"status"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacancies_dumper_api_requests_total",
			Help: "Total number of requests sent to the vacancies API",
		},
		[]string{"endpoint", "code"},
	)
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.WithFields(log.Fields{
		"addr":  addr,
		"state": "started",
	}).Info("Metrics")

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
