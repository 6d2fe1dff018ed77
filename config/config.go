// Copyright 2017 Tomas Machalek <tomas.machalek@gmail.com>
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

package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"logsvc/common"
	"logsvc/elastic"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddress          = "0.0.0.0"
	DefaultListenPort             = 8080
	DefaultServerReadTimeoutSecs  = 30
	DefaultServerWriteTimeoutSecs = 60
	DefaultMaxIngestItems         = 10000
	DefaultMaxRequestBodyBytes    = 32 * 1024 * 1024
	DefaultLogLevel               = "info"
)

// Main describes logsvc's configuration
type Main struct {
	ListenAddress          string                 `json:"listenAddress"`
	ListenPort             int                    `json:"listenPort"`
	ServerReadTimeoutSecs  int                    `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                    `json:"serverWriteTimeoutSecs"`
	Logging                logging.LoggingConf    `json:"logging"`
	ElasticSearch          elastic.ConnectionConf `json:"elasticSearch"`

	// MaxIngestItems limits the number of log lines
	// accepted by a single insert request
	MaxIngestItems int `json:"maxIngestItems"`

	// ScriptPath is an optional Lua script with a `transform`
	// function applied to each parsed record before it is stored.
	ScriptPath     string `json:"scriptPath"`
	ScriptPoolSize int    `json:"scriptPoolSize"`

	// MaxRequestBodyBytes limits the size of any request body
	MaxRequestBodyBytes int64 `json:"maxRequestBodyBytes"`
}

// ServerAddr returns a host:port address the HTTP server should listen on
func (c *Main) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenAddress, c.ListenPort)
}

// LoggingConf returns logging configuration with
// the log level defaulting to DefaultLogLevel
func (c *Main) LoggingConf() logging.LoggingConf {
	ans := c.Logging
	if ans.Level == "" {
		ans.Level = DefaultLogLevel
	}
	return ans
}

// HasScript tests whether a record transformation script is configured
func (c *Main) HasScript() bool {
	return c.ScriptPath != ""
}

// Validate checks for some essential config properties
// and fills in defaults for the missing optional ones.
func Validate(conf *Main) error {
	if err := conf.ElasticSearch.Validate(); err != nil {
		return err
	}
	if conf.ListenAddress == "" {
		conf.ListenAddress = DefaultListenAddress
		log.Warn().Str("address", conf.ListenAddress).Msg("listenAddress not specified, using default")
	}
	if conf.ListenPort == 0 {
		conf.ListenPort = DefaultListenPort
		log.Warn().Int("port", conf.ListenPort).Msg("listenPort not specified, using default")
	}
	if conf.ListenPort < 0 || conf.ListenPort > 65535 {
		return fmt.Errorf("invalid listenPort %d", conf.ListenPort)
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = DefaultServerReadTimeoutSecs
		log.Warn().
			Int("timeout", conf.ServerReadTimeoutSecs).
			Msg("serverReadTimeoutSecs not specified, using default")
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = DefaultServerWriteTimeoutSecs
		log.Warn().
			Int("timeout", conf.ServerWriteTimeoutSecs).
			Msg("serverWriteTimeoutSecs not specified, using default")
	}
	if conf.MaxIngestItems == 0 {
		conf.MaxIngestItems = DefaultMaxIngestItems
		log.Warn().
			Int("default", conf.MaxIngestItems).
			Msg("maxIngestItems not specified, using default")
	}
	if conf.MaxIngestItems < 0 {
		return fmt.Errorf("invalid maxIngestItems %d", conf.MaxIngestItems)
	}
	if conf.MaxRequestBodyBytes == 0 {
		conf.MaxRequestBodyBytes = DefaultMaxRequestBodyBytes
		log.Warn().
			Int64("default", conf.MaxRequestBodyBytes).
			Msg("maxRequestBodyBytes not specified, using default")
	}
	if conf.MaxRequestBodyBytes < 0 {
		return fmt.Errorf("invalid maxRequestBodyBytes %d", conf.MaxRequestBodyBytes)
	}
	if conf.HasScript() {
		isFile, err := fs.IsFile(conf.ScriptPath)
		if err != nil {
			return fmt.Errorf("failed to test scriptPath: %w", err)
		}
		if !isFile {
			return fmt.Errorf("invalid scriptPath: '%s'", conf.ScriptPath)
		}
		if conf.ScriptPoolSize == 0 {
			conf.ScriptPoolSize = runtime.NumCPU()
			log.Warn().
				Int("default", conf.ScriptPoolSize).
				Msg("scriptPoolSize not specified, using default")
		}
		if conf.ScriptPoolSize < 0 {
			return fmt.Errorf("invalid scriptPoolSize %d", conf.ScriptPoolSize)
		}
	}
	return nil
}

func isYAML(uri string) bool {
	ext := strings.ToLower(filepath.Ext(uri))
	return ext == ".yaml" || ext == ".yml"
}

// yamlToJSON re-encodes a YAML document as JSON so both
// formats share the same (json tagged) keys, including the ones
// of embedded third party types.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(doc)
}

// Load loads main configuration (either from a local fs or via http(s)).
// Files with the .yaml/.yml suffix are decoded as YAML, anything else
// is expected to be JSON.
func Load(uri string) (*Main, error) {
	rawData, err := common.LoadSupportedResource(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if isYAML(uri) {
		rawData, err = yamlToJSON(rawData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode configuration %s: %w", uri, err)
		}
	}
	var conf Main
	if err := json.Unmarshal(rawData, &conf); err != nil {
		return nil, fmt.Errorf("failed to decode configuration %s: %w", uri, err)
	}
	return &conf, nil
}
