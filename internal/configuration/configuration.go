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
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const defaultSettingsFile = "settings.prop"

// propertyKeys maps keys of the legacy settings.prop file to environment variables.
var propertyKeys = map[string]string{
	"interval":           "INTERVAL",
	"threadPoolSize":     "POOL_SIZE",
	"logFile":            "LOG_FILE",
	"isDebug":            "DEBUG",
	"areaIDs":            "AREA_IDS",
	"specializationsIDs": "SPECIALIZATION_IDS",
	"appName":            "APP_NAME",
	"appEmail":           "APP_EMAIL",
	"version":            "APP_VERSION",
	"dataFileName":       "DATA_FILE",
}

// New builds the configuration. Precedence, highest first: process environment,
// .env file, settings properties file, struct defaults.
func New() (Configuration, error) {
	config := Configuration{}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("loading .env: %w", err)
	}

	settings := settingsFile(os.Getenv("SETTINGS_FILE"))
	if settings == "" {
		settings = defaultSettingsFile
	}

	if settings.Exist() {
		err = loadProperties(settings.String())
		if err != nil {
			return config, fmt.Errorf("loading settings file %s: %w", settings.String(), err)
		}
		log.WithFields(log.Fields{"file": settings.String()}).Debug("Settings file loaded")
	}

	err = env.Parse(&config)
	if err != nil {
		return config, fmt.Errorf("parsing environment: %w", err)
	}

	config.AreaIDs = cleanList(config.AreaIDs)
	config.SpecializationIDs = cleanList(config.SpecializationIDs)

	return config, config.Validate()
}

func loadProperties(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")

	err := v.ReadInConfig()
	if err != nil {
		return err
	}

	for key, name := range propertyKeys {
		if !v.IsSet(key) {
			continue
		}
		// Explicit environment always wins over the file
		if _, exist := os.LookupEnv(name); exist {
			continue
		}

		value := strings.TrimSpace(v.GetString(key))
		// interval is stored in seconds in settings.prop
		if key == "interval" {
			if _, err = strconv.Atoi(value); err == nil {
				value += "s"
			}
		}

		err = os.Setenv(name, value)
		if err != nil {
			return err
		}
	}

	return nil
}

func cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			cleaned = append(cleaned, value)
		}
	}
	return cleaned
}
