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

package common

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func TestLoadSupportedResourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"listenPort": 8080}`), 0644))

	data, err := LoadSupportedResource(path)
	assert.NoError(t, err)
	assert.Equal(t, `{"listenPort": 8080}`, string(data))

	data, err = LoadSupportedResource("file://" + path)
	assert.NoError(t, err)
	assert.Equal(t, `{"listenPort": 8080}`, string(data))
}

func TestLoadSupportedResourceMissing(t *testing.T) {
	_, err := LoadSupportedResource("")
	assert.Error(t, err)
	_, err = LoadSupportedResource(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadSupportedResourceHTTP(t *testing.T) {
	httpmock.ActivateNonDefault(resourceClient.GetClient())
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(
		http.MethodGet, "http://conf.local/logsvc.json", httpmock.NewStringResponder(200, `{"a": 1}`))
	httpmock.RegisterResponder(
		http.MethodGet, "http://conf.local/missing.json", httpmock.NewStringResponder(404, ``))

	data, err := LoadSupportedResource("http://conf.local/logsvc.json")
	assert.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, string(data))

	_, err = LoadSupportedResource("http://conf.local/missing.json")
	assert.Error(t, err)
}
