// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logsvc/api"
	"logsvc/config"
	"logsvc/elastic"
	"logsvc/scripting"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runServer(conf *config.Main) error {
	client := elastic.NewClient(&conf.ElasticSearch)
	var transformer api.RecordTransformer
	if conf.HasScript() {
		tr, err := scripting.LoadTransformer(conf.ScriptPath, conf.ScriptPoolSize)
		if err != nil {
			return fmt.Errorf("failed to load record script: %w", err)
		}
		defer tr.Close()
		transformer = tr
		log.Info().
			Str("script", conf.ScriptPath).
			Int("poolSize", conf.ScriptPoolSize).
			Msg("loaded record transform script")
	}
	if conf.LoggingConf().Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	actions := api.NewActions(
		client, transformer, conf.MaxIngestItems, conf.MaxRequestBodyBytes, version)
	srv := &http.Server{
		Addr:         conf.ServerAddr(),
		Handler:      api.NewRouter(actions),
		ReadTimeout:  time.Duration(conf.ServerReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(conf.ServerWriteTimeoutSecs) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", srv.Addr).
			Str("storage", client.String()).
			Msg("starting logsvc HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Warn().Msg("shutdown request received")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve <config>",
		Short: "Start the HTTP server",
		Long:  serveHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			return runServer(conf)
		},
	}
}
