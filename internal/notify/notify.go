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
	"time"

	"github.com/Ahton89/vacancies_dumper/internal/configuration"
	"github.com/slack-go/slack"
)

// New picks the notifier configured by NOTIFY_BACKEND.
func New(config configuration.Configuration) (Notifier, error) {
	switch config.NotifyBackend {
	case configuration.NotifySlack:
		return NewSlack(config), nil
	case configuration.NotifyTelegram:
		return NewTg(config)
	default:
		return Nop(), nil
	}
}

func NewSlack(config configuration.Configuration) Notifier {
	return &notifier{
		config: config,
	}
}

func (n *notifier) Notify(ctx context.Context, report CycleReport) error {
	color := "#75FB4C"
	title := ":white_check_mark: Cycle finished"
	if report.Failed > 0 || report.FailedPairs > 0 {
		color = "#F2C744"
		title = ":warning: Cycle finished with failures"
	}
	if report.Cancelled {
		color = "#E01E5A"
		title = ":octagonal_sign: Cycle cancelled"
	}

	// Header
	header := slack.NewHeaderBlock(
		&slack.TextBlockObject{
			Type:  slack.PlainTextType,
			Text:  title,
			Emoji: true,
		},
	)
	// Counters
	body := slack.NewSectionBlock(
		nil,
		[]*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Listed*\n%d", report.Listed), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Unique*\n%d", report.Unique), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Fetched*\n%d", report.Fetched), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Failed*\n%d", report.Failed), false, false),
		},
		nil,
	)
	// Footer
	footer := slack.NewContextBlock(
		"",
		slack.NewTextBlockObject(
			slack.MarkdownType,
			fmt.Sprintf("cycle `%s` took %s, data file `%s`", report.Id, report.Duration.Round(time.Second), report.DataFile),
			false,
			false,
		),
	)

	return n.post(ctx, color, header, body, footer)
}

func (n *notifier) WelcomeMessage(ctx context.Context, filters Filters) error {
	header := slack.NewHeaderBlock(
		&slack.TextBlockObject{
			Type:  slack.PlainTextType,
			Text:  ":hidog: Vacancies dumper started",
			Emoji: true,
		},
	)
	body := slack.NewSectionBlock(
		&slack.TextBlockObject{
			Type: slack.MarkdownType,
			Text: fmt.Sprintf("```%s```", filters.String()),
		},
		nil,
		nil,
	)

	return n.post(ctx, "#5C9DDB", header, body)
}

func (n *notifier) post(ctx context.Context, color string, blocks ...slack.Block) error {
	message := slack.WebhookMessage{
		Attachments: []slack.Attachment{
			{
				Color: color,
				Blocks: slack.Blocks{
					BlockSet: blocks,
				},
			},
		},
	}

	return slack.PostWebhookContext(ctx, n.config.SlackWebhook, &message)
}

// Nop returns a notifier that drops everything.
func Nop() Notifier {
	return noop{}
}

func (noop) WelcomeMessage(context.Context, Filters) error {
	return nil
}

func (noop) Notify(context.Context, CycleReport) error {
	return nil
}
