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

package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"logsvc/logline"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	bulkResultDeleted = "deleted"
)

type docBulkMetaRecord struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

type docBulkIndexMetaObj struct {
	Index docBulkMetaRecord `json:"index"`
}

type docBulkRemoveMetaObj struct {
	Delete docBulkMetaRecord `json:"delete"`
}

// BulkItemResult describes the outcome of a single bulk operation
type BulkItemResult struct {
	Index  string      `json:"_index"`
	ID     string      `json:"_id"`
	Status int         `json:"status"`
	Result string      `json:"result"`
	Error  *ErrorCause `json:"error,omitempty"`
}

// Failed tests whether the operation has not been applied
func (bir BulkItemResult) Failed() bool {
	return bir.Error != nil || bir.Status >= 300
}

// BulkResponse describes ElasticSearch response
// for the _bulk call. Each item is keyed by
// the operation type (index, delete, ...).
type BulkResponse struct {
	Took   int                         `json:"took"`
	Errors bool                        `json:"errors"`
	Items  []map[string]BulkItemResult `json:"items"`
}

// IngestResult summarizes a bulk insert
type IngestResult struct {
	Indexed    int    `json:"indexed"`
	Failed     int    `json:"failed"`
	FirstError string `json:"firstError,omitempty"`
}

func (c *ESClient) bulkPath() string {
	if c.conf.RefreshOnWrite {
		return "/_bulk?refresh=true"
	}
	return "/_bulk"
}

// bulkRequest joins NDJSON lines (incl. the mandatory final
// new line) and sends them to the _bulk endpoint
func (c *ESClient) bulkRequest(ctx context.Context, jsonLines [][]byte) (BulkResponse, error) {
	jsonLines = append(jsonLines, []byte{})
	resp, err := c.do(
		ctx, http.MethodPost, c.bulkPath(), ndjsonContentType, bytes.Join(jsonLines, []byte("\n")))
	if err != nil {
		return BulkResponse{}, err
	}
	var ans BulkResponse
	if err := json.Unmarshal(resp, &ans); err != nil {
		return BulkResponse{}, fmt.Errorf("failed to decode bulk response: %w", err)
	}
	return ans, nil
}

// Store inserts provided records using a single bulk request.
// Each record gets a new unique ID. Records rejected by the server
// do not cause an error, they are reported via IngestResult.
func (c *ESClient) Store(ctx context.Context, records []logline.Record) (IngestResult, error) {
	var ans IngestResult
	if len(records) == 0 {
		return ans, nil
	}
	jsonLines := make([][]byte, 0, len(records)*2+1)
	for _, rec := range records {
		jsonMeta, err := json.Marshal(
			docBulkIndexMetaObj{Index: docBulkMetaRecord{Index: c.conf.Index, ID: uuid.New().String()}})
		if err != nil {
			return ans, fmt.Errorf("failed to generate bulk insert JSON (meta): %w", err)
		}
		jsonData, err := json.Marshal(rec)
		if err != nil {
			return ans, fmt.Errorf("failed to generate bulk insert JSON (values): %w", err)
		}
		jsonLines = append(jsonLines, jsonMeta, jsonData)
	}
	resp, err := c.bulkRequest(ctx, jsonLines)
	if err != nil {
		return ans, fmt.Errorf("failed to push records: %w", err)
	}
	for _, item := range resp.Items {
		for _, res := range item {
			if res.Failed() {
				if ans.FirstError == "" && res.Error != nil {
					ans.FirstError = res.Error.String()
				}
				ans.Failed++

			} else {
				ans.Indexed++
			}
		}
	}
	log.Info().
		Int("indexed", ans.Indexed).
		Int("failed", ans.Failed).
		Msg("inserted chunk of records to ElasticSearch")
	return ans, nil
}
