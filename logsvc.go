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
	"fmt"
	"os"
	"runtime"
	"time"

	"logsvc/config"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

var (
	version   string
	buildDate string
	gitCommit string
)

// VersionInfo provides a detailed information about the actual build
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

func (v VersionInfo) String() string {
	ver := v.Version
	if ver == "" {
		ver = "dev"
	}
	return fmt.Sprintf(
		"logsvc %s\nbuild date: %s\nlast commit: %s\ngo: %s",
		ver, v.BuildDate, v.GitCommit, runtime.Version(),
	)
}

func currentVersion() VersionInfo {
	return VersionInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}
}

// loadConfig loads a configuration, sets up logging
// and validates the rest of the values.
func loadConfig(uri string) (*config.Main, error) {
	conf, err := config.Load(uri)
	if err != nil {
		return nil, err
	}
	logging.SetupLogging(conf.LoggingConf())
	if err := config.Validate(conf); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", uri, err)
	}
	return conf, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), currentVersion())
		},
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "logsvc",
		Short:         "Log ingestion and search service backed by ElasticSearch",
		Long:          rootHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newServeCmd(),
		newInitIndexCmd(),
		newParseCmd(),
		newQueryCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("logsvc failed")
		os.Exit(1)
	}
}
