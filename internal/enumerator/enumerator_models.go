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

	"github.com/Ahton89/vacancies_dumper/internal/hh"
)

type Lister interface {
	Vacancies(ctx context.Context, query hh.ListingQuery) (hh.Page, error)
}

// PerPage is the listing page size, the largest the API serves.
const PerPage = 100

type Enumerator struct {
	lister Lister
	period int
}

type Result struct {
	// IDs holds every discovered vacancy once, in discovery order
	IDs         []string
	Listed      int
	Pages       int
	FailedPairs int
}
