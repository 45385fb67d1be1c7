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
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/tidwall/gjson"
)

const descriptionExcerpt = 160

// Summarize picks the human readable fields out of a vacancy detail document.
func Summarize(body []byte) VacancyInfo {
	vacancy := gjson.ParseBytes(body)

	return VacancyInfo{
		Id:          vacancy.Get("id").String(),
		Name:        vacancy.Get("name").String(),
		Employer:    vacancy.Get("employer.name").String(),
		Area:        vacancy.Get("area.name").String(),
		Published:   vacancy.Get("published_at").String(),
		Link:        vacancy.Get("alternate_url").String(),
		Description: excerpt(descriptionText(vacancy.Get("description").String()), descriptionExcerpt),
	}
}

// descriptionText flattens the html description into single spaced text.
func descriptionText(description string) string {
	if description == "" {
		return ""
	}

	doc, err := htmlquery.Parse(strings.NewReader(description))
	if err != nil {
		return ""
	}

	parts := make([]string, 0)
	for _, node := range htmlquery.Find(doc, "//text()") {
		parts = append(parts, htmlquery.InnerText(node))
	}

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
