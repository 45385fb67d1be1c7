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

package hh

import (
	"errors"
	"net/http"
)

var (
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrMalformedResponse = errors.New("malformed response")
)

const (
	DictionaryAreas           = "areas"
	DictionarySpecializations = "specializations"
)

type Client struct {
	domain    string
	userAgent string
	token     string
	client    *http.Client
}

// ListingQuery selects one page of the vacancies listing. Empty filters are not sent.
type ListingQuery struct {
	Area           string
	Specialization string
	Page           int
	PerPage        int
	Period         int
}

type Page struct {
	IDs   []string
	Page  int
	Pages int
	Found int
}

type VacancyInfo struct {
	Id          string
	Name        string
	Employer    string
	Area        string
	Published   string
	Link        string
	Description string
}
