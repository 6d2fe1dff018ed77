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
	"net/http"

	"logsvc/filter"
	"logsvc/logline"

	"github.com/rs/zerolog/log"
)

// search is a low level search function
func (c *ESClient) search(ctx context.Context, query []byte, scroll string) (Result, error) {
	path := "/" + c.conf.Index + "/_search"
	if scroll != "" {
		path += "?scroll=" + scroll
	}
	resp, err := c.Do(ctx, http.MethodPost, path, query)
	if err != nil {
		return NewEmptyResult(), err
	}
	var srchResult Result
	if err := json.Unmarshal(resp, &srchResult); err != nil {
		return NewEmptyResult(), fmt.Errorf("failed to decode search result: %w", err)
	}
	return srchResult, nil
}

// FetchScroll fetch additional data from an existing result
// using a scrollId.
func (c *ESClient) FetchScroll(ctx context.Context, scrollID string, ttl string) (Result, error) {
	jsonBody, err := json.Marshal(scrollObj{Scroll: ttl, ScrollID: scrollID})
	if err != nil {
		return NewEmptyResult(), err
	}
	resp, err := c.Do(ctx, http.MethodPost, "/_search/scroll", jsonBody)
	if err != nil {
		return NewEmptyResult(), err
	}
	var srchResult Result
	if err := json.Unmarshal(resp, &srchResult); err != nil {
		return NewEmptyResult(), fmt.Errorf("failed to decode scroll result: %w", err)
	}
	return srchResult, nil
}

// clearScroll releases server resources held by a scroll.
// Failures are only logged as the scroll expires anyway.
func (c *ESClient) clearScroll(ctx context.Context, scrollID string) {
	jsonBody, err := json.Marshal(clearScrollObj{ScrollID: scrollID})
	if err != nil {
		log.Error().Err(err).Msg("failed to encode clear scroll request")
		return
	}
	if _, err := c.Do(ctx, http.MethodDelete, "/_search/scroll", jsonBody); err != nil {
		log.Warn().Err(err).Msg("failed to clear search scroll")
	}
}

// Query returns records matching provided expression. The number
// of returned records is limited by the configured searchLimit.
func (c *ESClient) Query(ctx context.Context, expr filter.Expression) ([]logline.Record, error) {
	encQuery, err := CreateSearchQuery(expr, c.conf.SearchLimit)
	if err != nil {
		return []logline.Record{}, fmt.Errorf("failed to create search query: %w", err)
	}
	log.Debug().RawJSON("query", encQuery).Msg("searching records")
	result, err := c.search(ctx, encQuery, "")
	if err != nil {
		return []logline.Record{}, err
	}
	ans := make([]logline.Record, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		ans = append(ans, hit.Source.Record)
	}
	return ans, nil
}
