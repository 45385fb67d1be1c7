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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Ahton89/vacancies_dumper/internal/configuration"
	"github.com/Ahton89/vacancies_dumper/internal/datafile"
	"github.com/Ahton89/vacancies_dumper/internal/hh"
	"github.com/Ahton89/vacancies_dumper/internal/metrics"
	"github.com/Ahton89/vacancies_dumper/internal/notify"
	"github.com/Ahton89/vacancies_dumper/internal/worker"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	config   configuration.Configuration
	settings string
	debug    bool
	logFile  io.Closer
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:               "vacancies_dumper",
		Short:             "Dumps vacancies from the hh.ru API into a flat data file",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
		RunE:              a.run,
	}

	root.PersistentFlags().StringVar(&a.settings, "settings", "", "settings properties file (overrides SETTINGS_FILE)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Scan forever, sleeping the configured interval between cycles",
			RunE:  a.run,
		},
		&cobra.Command{
			Use:   "once",
			Short: "Run a single scan cycle and exit",
			RunE:  a.once,
		},
		&cobra.Command{
			Use:   hh.DictionaryAreas,
			Short: "Save the areas dictionary",
			RunE:  a.dictionary(hh.DictionaryAreas),
		},
		&cobra.Command{
			Use:   hh.DictionarySpecializations,
			Short: "Save the specializations dictionary",
			RunE:  a.dictionary(hh.DictionarySpecializations),
		},
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.settings != "" {
		err := os.Setenv("SETTINGS_FILE", a.settings)
		if err != nil {
			return err
		}
	}

	config, err := configuration.New()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if a.debug {
		config.Debug = true
	}
	a.config = config

	a.logFile, err = setupLogger(config)
	if err != nil {
		return fmt.Errorf("log file %s: %w", config.LogFile, err)
	}

	log.WithFields(log.Fields{
		"interval":        config.Interval,
		"pool_size":       config.PoolSize,
		"areas":           config.AreaIDs,
		"specializations": config.SpecializationIDs,
		"user_agent":      config.UserAgent(),
		"data_file":       config.DataFile,
		"notify":          config.NotifyBackend,
	}).Info("Settings")

	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func (a *app) run(cmd *cobra.Command, _ []string) error {
	// Create a context that is cancelled when SIGINT or SIGTERM is received
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create a wait group to wait for all goroutines to finish
	wg := new(sync.WaitGroup)

	log.Info("Starting vacancies dumper 🦄...")

	dataFile, err := a.openDataFile()
	if err != nil {
		return err
	}
	defer a.closeDataFile(dataFile)

	notifier, err := notify.New(a.config)
	if err != nil {
		return err
	}

	if a.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := metrics.Serve(ctx, a.config.MetricsAddr)
			if err != nil {
				log.WithFields(log.Fields{
					"addr":  a.config.MetricsAddr,
					"error": err,
				}).Error("Metrics")
			}
		}()
	}

	dumper := worker.New(a.config, hh.New(a.config), dataFile, notifier, wg)
	wg.Add(1)
	go dumper.Start(ctx)

	// Wait for SIGINT or SIGTERM
	<-ctx.Done()

	cancel()

	wg.Wait()

	log.Info("Bye 👋")

	return nil
}

func (a *app) once(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dataFile, err := a.openDataFile()
	if err != nil {
		return err
	}
	defer a.closeDataFile(dataFile)

	notifier, err := notify.New(a.config)
	if err != nil {
		return err
	}

	dumper := worker.New(a.config, hh.New(a.config), dataFile, notifier, new(sync.WaitGroup))

	report, err := dumper.RunOnce(ctx)
	log.Info(report.String())

	// Interrupted by a signal is a clean stop
	if err != nil && ctx.Err() == nil {
		return err
	}

	return nil
}

func (a *app) dictionary(name string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), a.config.RequestTimeout+time.Second)
		defer cancel()

		log.Infof("Getting %s data...", name)

		// Dictionaries never touch the data file
		dumper := worker.New(a.config, hh.New(a.config), nil, notify.Nop(), new(sync.WaitGroup))

		err := dumper.DumpDictionaries(ctx, time.Now(), name)
		if err != nil {
			return err
		}

		log.Infof("Getting %s data complete", name)

		return nil
	}
}

func (a *app) openDataFile() (*datafile.File, error) {
	log.Infof("Opening data file %s...", a.config.DataFile)

	dataFile, err := datafile.Open(a.config.DataFile, a.config.DataLowercase)
	if err != nil {
		return nil, fmt.Errorf("data file %s: %w", a.config.DataFile, err)
	}

	return dataFile, nil
}

func (a *app) closeDataFile(dataFile *datafile.File) {
	err := dataFile.Close()
	if err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("Closing data file...")
	}
}
