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

package configuration

import (
	"errors"
	"fmt"
	"os"
	"time"
)

var ErrInvalid = errors.New("invalid configuration")

const (
	NotifyNone     = "none"
	NotifySlack    = "slack"
	NotifyTelegram = "telegram"
)

type Configuration struct {
	Debug             bool          `env:"DEBUG" envDefault:"false"`
	LogFile           string        `env:"LOG_FILE" envDefault:"vacancies_dumper.log"`
	Interval          time.Duration `env:"INTERVAL" envDefault:"1h"`
	PoolSize          int           `env:"POOL_SIZE" envDefault:"4"`
	ProgressInterval  time.Duration `env:"PROGRESS_INTERVAL" envDefault:"1s"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ApiDomain         string        `env:"API_DOMAIN" envDefault:"https://api.hh.ru"`
	ApiToken          string        `env:"API_TOKEN"`
	SearchPeriod      int           `env:"SEARCH_PERIOD" envDefault:"1"`
	AreaIDs           []string      `env:"AREA_IDS" envDefault:"1"`
	SpecializationIDs []string      `env:"SPECIALIZATION_IDS" envDefault:"1.395,1.117,1.221"`
	AppName           string        `env:"APP_NAME" envDefault:"VDS"`
	AppEmail          string        `env:"APP_EMAIL"`
	Version           string        `env:"APP_VERSION" envDefault:"0.1"`
	DataFile          string        `env:"DATA_FILE" envDefault:"vacancies.txt"`
	DataLowercase     bool          `env:"DATA_LOWERCASE" envDefault:"false"`
	DumpDictionaries  bool          `env:"DUMP_DICTIONARIES" envDefault:"true"`
	DictionariesDir   string        `env:"DICTIONARIES_DIR" envDefault:"."`
	MetricsAddr       string        `env:"METRICS_ADDR"`
	NotifyBackend     string        `env:"NOTIFY_BACKEND" envDefault:"none"`
	SlackWebhook      string        `env:"SLACK_WEBHOOK"`
	TelegramToken     string        `env:"TELEGRAM_TOKEN"`
	TelegramChatId    int64         `env:"TELEGRAM_CHAT_ID"`
}

// UserAgent identifies the dumper to the API the way hh.ru asks clients to.
func (c Configuration) UserAgent() string {
	return fmt.Sprintf("%s/%s (%s)", c.AppName, c.Version, c.AppEmail)
}

func (c Configuration) Validate() error {
	switch {
	case c.PoolSize < 1:
		return fmt.Errorf("%w: pool size must be positive, got %d", ErrInvalid, c.PoolSize)
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalid, c.Interval)
	case c.ProgressInterval <= 0:
		return fmt.Errorf("%w: progress interval must be positive, got %s", ErrInvalid, c.ProgressInterval)
	case len(c.AreaIDs) == 0:
		return fmt.Errorf("%w: at least one area id is required", ErrInvalid)
	case c.AppEmail == "":
		return fmt.Errorf("%w: app email is required", ErrInvalid)
	case c.DataFile == "":
		return fmt.Errorf("%w: data file is required", ErrInvalid)
	}

	switch c.NotifyBackend {
	case NotifyNone:
	case NotifySlack:
		if c.SlackWebhook == "" {
			return fmt.Errorf("%w: slack webhook is required for slack notifications", ErrInvalid)
		}
	case NotifyTelegram:
		if c.TelegramToken == "" || c.TelegramChatId == 0 {
			return fmt.Errorf("%w: telegram token and chat id are required for telegram notifications", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown notify backend %q", ErrInvalid, c.NotifyBackend)
	}

	return nil
}

type settingsFile string

func (s *settingsFile) String() string {
	return string(*s)
}

func (s *settingsFile) Exist() bool {
	_, err := os.Stat(s.String())
	if err != nil {
		return false
	}
	return true
}
