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
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ahton89/vacancies_dumper/internal/configuration"
	"github.com/Ahton89/vacancies_dumper/internal/metrics"
	"github.com/tidwall/gjson"
)

func New(config configuration.Configuration) *Client {
	return &Client{
		domain:    strings.TrimRight(config.ApiDomain, "/"),
		userAgent: config.UserAgent(),
		token:     config.ApiToken,
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
	}
}

// Vacancies fetches one page of the listing endpoint.
func (c *Client) Vacancies(ctx context.Context, query ListingQuery) (Page, error) {
	params := url.Values{}
	if query.Area != "" {
		params.Set("area", query.Area)
	}
	if query.Specialization != "" {
		params.Set("specialization", query.Specialization)
	}
	if query.Period > 0 {
		params.Set("period", strconv.Itoa(query.Period))
	}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("per_page", strconv.Itoa(query.PerPage))
	params.Set("no_magic", "true")

	body, err := c.get(ctx, "vacancies", "/vacancies", params)
	if err != nil {
		return Page{}, err
	}

	return parsePage(body)
}

// Vacancy returns the detail document of a single vacancy exactly as the API sent it.
func (c *Client) Vacancy(ctx context.Context, id string) ([]byte, error) {
	return c.get(ctx, "vacancy", "/vacancies/"+url.PathEscape(id), nil)
}

func (c *Client) Dictionary(ctx context.Context, name string) ([]byte, error) {
	return c.get(ctx, name, "/"+name, nil)
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	target := c.domain + path
	if len(params) > 0 {
		target = fmt.Sprintf("%s?%s", target, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.APIRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, path)
	}

	return body, nil
}

func parsePage(body []byte) (Page, error) {
	if !gjson.ValidBytes(body) {
		return Page{}, fmt.Errorf("%w: listing is not json", ErrMalformedResponse)
	}

	listing := gjson.ParseBytes(body)

	items := listing.Get("items")
	if !items.IsArray() {
		return Page{}, fmt.Errorf("%w: listing has no items", ErrMalformedResponse)
	}

	page := Page{
		IDs:   make([]string, 0, len(items.Array())),
		Page:  int(listing.Get("page").Int()),
		Pages: int(listing.Get("pages").Int()),
		Found: int(listing.Get("found").Int()),
	}

	items.ForEach(func(_, item gjson.Result) bool {
		if id := item.Get("id").String(); id != "" {
			page.IDs = append(page.IDs, id)
		}
		return true
	})

	return page, nil
}
