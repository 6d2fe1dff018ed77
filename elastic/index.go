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

package elastic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	errTypeIndexExists = "resource_already_exists_exception"
)

// indexMapping defines types of record fields. The `dt` field
// tolerates values which are not valid dates as the line parser
// does not validate timestamps. Such records are stored but not
// matched by time range queries.
const indexMapping = `{
  "mappings": {
    "properties": {
      "dt":     {"type": "date", "ignore_malformed": true},
      "level":  {"type": "keyword"},
      "module": {"type": "keyword"},
      "msg":    {
        "type": "text",
        "fields": {"keyword": {"type": "keyword", "ignore_above": 8191}}
      }
    }
  }
}`

// IndexExists tests whether the configured index exists
func (c *ESClient) IndexExists(ctx context.Context) (bool, error) {
	_, err := c.Do(ctx, http.MethodHead, "/"+c.conf.Index, nil)
	if err != nil {
		var tErr *ESClientError
		if errors.As(err, &tErr) && tErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to test index existence: %w", err)
	}
	return true, nil
}

// EnsureIndex creates the configured index along with
// its mapping in case it does not exist yet.
func (c *ESClient) EnsureIndex(ctx context.Context) error {
	exists, err := c.IndexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		log.Debug().Str("index", c.conf.Index).Msg("index already exists")
		return nil
	}
	if _, err := c.Do(ctx, http.MethodPut, "/"+c.conf.Index, []byte(indexMapping)); err != nil {
		var tErr *ESClientError
		if errors.As(err, &tErr) && tErr.ESError.Error.Type == errTypeIndexExists {
			log.Info().Str("index", c.conf.Index).Msg("index created concurrently, using that one")
			return nil
		}
		return fmt.Errorf("failed to create index %s: %w", c.conf.Index, err)
	}
	log.Info().Str("index", c.conf.Index).Msg("created index")
	return nil
}
