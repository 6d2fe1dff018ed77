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

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConf(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeConf(t, "conf.json", `{
		"listenPort": 9090,
		"elasticSearch": {"server": "http://elasticsearch:9200", "index": "app_logs"},
		"logging": {"level": "debug"}
	}`)
	conf, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 9090, conf.ListenPort)
	assert.Equal(t, "http://elasticsearch:9200", conf.ElasticSearch.Server)
	assert.Equal(t, "app_logs", conf.ElasticSearch.Index)
	assert.EqualValues(t, "debug", conf.Logging.Level)
}

func TestLoadYAML(t *testing.T) {
	path := writeConf(t, "conf.yaml", `
listenAddress: 127.0.0.1
elasticSearch:
  server: http://localhost:9200
  searchLimit: 25
  refreshOnWrite: true
maxIngestItems: 500
`)
	conf, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "127.0.0.1", conf.ListenAddress)
	assert.Equal(t, 25, conf.ElasticSearch.SearchLimit)
	assert.True(t, conf.ElasticSearch.RefreshOnWrite)
	assert.Equal(t, 500, conf.MaxIngestItems)
}

func TestLoadYAMLUsesJSONKeys(t *testing.T) {
	path := writeConf(t, "conf.yml", `
logging:
  level: warn
  maxFileSize: 50
elasticSearch:
  server: http://localhost:9200
  reqTimeoutSecs: 5
maxRequestBodyBytes: 2048
`)
	conf, err := Load(path)
	assert.NoError(t, err)
	assert.EqualValues(t, "warn", conf.Logging.Level)
	assert.Equal(t, 5, conf.ElasticSearch.ReqTimeoutSecs)
	assert.EqualValues(t, 2048, conf.MaxRequestBodyBytes)

	logConf, err := json.Marshal(conf.Logging)
	assert.NoError(t, err)
	assert.Contains(t, string(logConf), `"maxFileSize":50`)
}

func TestLoadEmptyYAML(t *testing.T) {
	conf, err := Load(writeConf(t, "conf.yaml", ""))
	assert.NoError(t, err)
	assert.Equal(t, 0, conf.ListenPort)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConf(t, "conf.json", `{"listenPort": "x"`))
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidateDefaults(t *testing.T) {
	conf := &Main{}
	conf.ElasticSearch.Server = "http://localhost:9200"
	assert.NoError(t, Validate(conf))
	assert.Equal(t, DefaultListenAddress, conf.ListenAddress)
	assert.Equal(t, DefaultListenPort, conf.ListenPort)
	assert.Equal(t, DefaultMaxIngestItems, conf.MaxIngestItems)
	assert.EqualValues(t, DefaultMaxRequestBodyBytes, conf.MaxRequestBodyBytes)
	assert.EqualValues(t, DefaultLogLevel, conf.LoggingConf().Level)
	assert.Equal(t, "0.0.0.0:8080", conf.ServerAddr())
	assert.False(t, conf.HasScript())
}

func TestValidateMissingServer(t *testing.T) {
	assert.Error(t, Validate(&Main{}))
}

func TestValidateScriptPath(t *testing.T) {
	conf := &Main{ScriptPath: filepath.Join(t.TempDir(), "missing.lua")}
	conf.ElasticSearch.Server = "http://localhost:9200"
	assert.Error(t, Validate(conf))

	conf.ScriptPath = writeConf(t, "transform.lua", "function transform(rec) return rec end")
	assert.NoError(t, Validate(conf))
	assert.Greater(t, conf.ScriptPoolSize, 0)
}

func TestValidateInvalidPort(t *testing.T) {
	conf := &Main{ListenPort: 70000}
	conf.ElasticSearch.Server = "http://localhost:9200"
	assert.Error(t, Validate(conf))
}
