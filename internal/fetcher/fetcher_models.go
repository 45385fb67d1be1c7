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
	"fmt"
	"sync/atomic"
	"time"
)

type Getter interface {
	Vacancy(ctx context.Context, id string) ([]byte, error)
}

type Sink interface {
	Append(stamp time.Time, body []byte) error
}

type Fetcher struct {
	getter           Getter
	sink             Sink
	poolSize         int
	progressInterval time.Duration
}

// Progress counts the outcome of one Fetch call.
type Progress struct {
	total   int
	fetched atomic.Int64
	failed  atomic.Int64
}

func (p *Progress) Total() int {
	return p.total
}

func (p *Progress) Fetched() int {
	return int(p.fetched.Load())
}

func (p *Progress) Failed() int {
	return int(p.failed.Load())
}

func (p *Progress) String() string {
	return fmt.Sprintf("Progress(vacancies=%d, failed=%d) from %d", p.Fetched(), p.Failed(), p.total)
}
