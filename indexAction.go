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
	"fmt"
	"time"

	"logsvc/elastic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newInitIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-index <config>",
		Short: "Create the log index",
		Long:  initIndexHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			client := elastic.NewClient(&conf.ElasticSearch)
			ctx, cancel := context.WithTimeout(
				cmd.Context(),
				time.Duration(conf.ElasticSearch.ReqTimeoutSecs)*2*time.Second,
			)
			defer cancel()
			if err := client.EnsureIndex(ctx); err != nil {
				return fmt.Errorf("failed to initialize index: %w", err)
			}
			log.Info().Str("index", client.Index()).Msg("index ready")
			return nil
		},
	}
}
