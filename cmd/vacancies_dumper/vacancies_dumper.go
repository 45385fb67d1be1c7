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

package main

import (
	"io"
	"os"

	"github.com/Ahton89/vacancies_dumper/internal/configuration"
	log "github.com/sirupsen/logrus"
)

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Fatal("Vacancies dumper")
	}
}

// setupLogger writes to stdout and, when configured, appends to the log file too.
func setupLogger(config configuration.Configuration) (io.Closer, error) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// Set debug log level if debug mode is enabled
	if config.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if config.LogFile == "" {
		return nil, nil
	}

	logFile, err := os.OpenFile(config.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	log.SetOutput(io.MultiWriter(os.Stdout, logFile))

	return logFile, nil
}
