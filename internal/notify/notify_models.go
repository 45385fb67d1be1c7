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

package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ahton89/vacancies_dumper/internal/configuration"
	"github.com/mymmrac/telego"
)

type Notifier interface {
	WelcomeMessage(ctx context.Context, filters Filters) error
	Notify(ctx context.Context, report CycleReport) error
}

type Filters struct {
	Areas           []string
	Specializations []string
	Interval        time.Duration
	PoolSize        int
}

type CycleReport struct {
	Id          string
	Started     time.Time
	Duration    time.Duration
	Listed      int
	Unique      int
	Fetched     int
	Failed      int
	FailedPairs int
	DataFile    string
	Cancelled   bool
}

type notifier struct {
	config configuration.Configuration
}

type tg_notifier struct {
	config configuration.Configuration
	bot    *telego.Bot
}

type noop struct{}

func (f Filters) String() string {
	specializations := "any"
	if len(f.Specializations) > 0 {
		specializations = strings.Join(f.Specializations, ", ")
	}
	return fmt.Sprintf("areas: %s\nspecializations: %s\ninterval: %s, workers: %d",
		strings.Join(f.Areas, ", "), specializations, f.Interval, f.PoolSize)
}

func (r CycleReport) String() string {
	return fmt.Sprintf("cycle %s (%s)\nlisted: %d, unique: %d\nfetched: %d, failed: %d, failed listings: %d\nfile: %s",
		r.Id,
		r.Duration.Round(time.Second),
		r.Listed, r.Unique,
		r.Fetched, r.Failed, r.FailedPairs,
		r.DataFile,
	)
}
