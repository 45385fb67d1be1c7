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
	"sync"
	"time"

	"github.com/Ahton89/vacancies_dumper/internal/configuration"
	"github.com/Ahton89/vacancies_dumper/internal/enumerator"
	"github.com/Ahton89/vacancies_dumper/internal/fetcher"
	"github.com/Ahton89/vacancies_dumper/internal/notify"
)

// API is the part of the vacancies API a cycle talks to.
type API interface {
	enumerator.Lister
	fetcher.Getter
	Dictionary(ctx context.Context, name string) ([]byte, error)
}

type worker struct {
	config     configuration.Configuration
	wg         *sync.WaitGroup
	api        API
	notifier   notify.Notifier
	enumerator *enumerator.Enumerator
	fetcher    *fetcher.Fetcher
	now        func() time.Time
}

type Worker interface {
	Start(ctx context.Context)
	RunOnce(ctx context.Context) (notify.CycleReport, error)
	DumpDictionaries(ctx context.Context, stamp time.Time, names ...string) error
}
