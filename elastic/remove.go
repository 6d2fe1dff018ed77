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
	"context"
	"encoding/json"
	"fmt"

	"logsvc/filter"

	"github.com/rs/zerolog/log"
)

func (c *ESClient) bulkRemoveRecordScroll(ctx context.Context, hits Hits) (int, error) {
	jsonLines := make([][]byte, 0, len(hits.Hits)+1)
	for _, item := range hits.Hits {
		jsonMeta, err := json.Marshal(
			docBulkRemoveMetaObj{Delete: docBulkMetaRecord{Index: c.conf.Index, ID: item.ID}})
		if err != nil {
			return 0, fmt.Errorf("failed to generate bulk remove JSON (meta): %w", err)
		}
		jsonLines = append(jsonLines, jsonMeta)
	}
	resp, err := c.bulkRequest(ctx, jsonLines)
	if err != nil {
		return 0, err
	}
	var removed int
	for _, item := range resp.Items {
		if res, ok := item["delete"]; ok && res.Result == bulkResultDeleted {
			removed++
		}
	}
	return removed, nil
}

// Delete removes all records matching provided expression.
// Matching documents are searched via ElasticSearch scroll
// mechanism in chunks of searchChunkSize. Each chunk is then
// removed by a single bulk request. The returned value is the
// number of actually removed documents (even in case of an error).
func (c *ESClient) Delete(ctx context.Context, expr filter.Expression) (int, error) {
	encQuery, err := createIDsQuery(expr, c.conf.SearchChunkSize)
	if err != nil {
		return 0, fmt.Errorf("failed to create search query: %w", err)
	}
	log.Debug().RawJSON("query", encQuery).Msg("searching records to remove")
	items, err := c.search(ctx, encQuery, c.conf.ScrollTTL)
	if err != nil {
		return 0, err
	}
	scrollID := items.ScrollID
	defer func() {
		if scrollID != "" {
			c.clearScroll(ctx, scrollID)
		}
	}()

	totalRemoved := 0
	for len(items.Hits.Hits) > 0 {
		ans, bulkErr := c.bulkRemoveRecordScroll(ctx, items.Hits)
		totalRemoved += ans
		if bulkErr != nil {
			return totalRemoved, fmt.Errorf("failed to remove records: %w", bulkErr)
		}
		if scrollID == "" {
			break
		}
		items, err = c.FetchScroll(ctx, scrollID, c.conf.ScrollTTL)
		if err != nil {
			return totalRemoved, err
		}
		if items.ScrollID != "" {
			scrollID = items.ScrollID
		}
	}
	log.Info().Int("removed", totalRemoved).Msg("removed records from ElasticSearch")
	return totalRemoved, nil
}
