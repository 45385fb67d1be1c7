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

	"github.com/Ahton89/vacancies_dumper/internal/configuration"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"
)

func NewTg(config configuration.Configuration) (Notifier, error) {
	options := make([]telego.BotOption, 0)
	if config.Debug {
		options = append(options, telego.WithDefaultDebugLogger())
	}

	bot, err := telego.NewBot(config.TelegramToken, options...)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	return &tg_notifier{
		config: config,
		bot:    bot,
	}, nil
}

func (n *tg_notifier) Notify(ctx context.Context, report CycleReport) error {
	title := "Cycle finished"
	if report.Cancelled {
		title = "Cycle cancelled"
	}

	return n.send(ctx, tu.Message(n.chat(), fmt.Sprintf("%s\n\n%s", title, report.String())))
}

func (n *tg_notifier) WelcomeMessage(ctx context.Context, filters Filters) error {
	msg := tu.Message(n.chat(), fmt.Sprintf("Vacancies dumper started\n\n%s", filters.String())).WithReplyMarkup(
		tu.InlineKeyboard(
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("API documentation").WithURL("https://api.hh.ru/openapi/redoc"),
			),
		),
	)

	return n.send(ctx, msg)
}

func (n *tg_notifier) send(ctx context.Context, params *telego.SendMessageParams) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg, err := n.bot.SendMessage(params)
	if err != nil {
		return fmt.Errorf("telegram chat %d: %w", n.config.TelegramChatId, err)
	}

	log.WithFields(log.Fields{
		"chat_id":    n.config.TelegramChatId,
		"message_id": msg.MessageID,
	}).Debug("Message sent to telegram")

	return nil
}

func (n *tg_notifier) chat() telego.ChatID {
	return telego.ChatID{ID: n.config.TelegramChatId}
}
