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

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"logsvc/filter"
	"logsvc/logline"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	ServiceName = "logsvc"
)

// Actions wraps all the "logs" REST API handlers
type Actions struct {
	storage        LogStorage
	transformer    RecordTransformer
	idxInit        *indexInitializer
	maxIngestItems int
	maxBodyBytes   int64
	version        string
}

func writeError(ctx *gin.Context, status int, err error) {
	ctx.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

// bodyErrorStatus maps a decodeBody error to an HTTP status
func bodyErrorStatus(err error) int {
	var mbErr *http.MaxBytesError
	if errors.As(err, &mbErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// decodeBody decodes JSON request body into `v`. An empty
// body is accepted in case allowEmpty is true and `v` is
// then left untouched. Bodies larger than maxBodyBytes are rejected.
func (a *Actions) decodeBody(ctx *gin.Context, v any, allowEmpty bool) error {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, a.maxBodyBytes)
	data, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("empty request body")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// EnsureIndex is a middleware creating the storage index
// before the first request is handled.
func (a *Actions) EnsureIndex(ctx *gin.Context) {
	if err := a.idxInit.ensure(ctx.Request.Context()); err != nil {
		log.Error().Err(err).Msg("failed to initialize storage index")
		writeError(ctx, http.StatusServiceUnavailable, fmt.Errorf("storage not available: %w", err))
		return
	}
	ctx.Next()
}

// About provides basic service information
func (a *Actions) About(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, aboutResponse{Name: ServiceName, Version: a.version})
}

// Insert parses posted log lines and stores them
func (a *Actions) Insert(ctx *gin.Context) {
	var payload LogMessageList
	if err := a.decodeBody(ctx, &payload, false); err != nil {
		writeError(ctx, bodyErrorStatus(err), err)
		return
	}
	if len(payload.Items) > a.maxIngestItems {
		writeError(
			ctx,
			http.StatusRequestEntityTooLarge,
			fmt.Errorf("too many items (%d), the limit is %d", len(payload.Items), a.maxIngestItems),
		)
		return
	}
	log.Debug().Int("items", len(payload.Items)).Msg("insert")

	var ans ingestResponse
	records := make([]logline.Record, 0, len(payload.Items))
	for _, item := range payload.Items {
		rec := logline.Parse(item.Message)
		if a.transformer != nil {
			var keep bool
			var err error
			rec, keep, err = a.transformer.Transform(ctx.Request.Context(), rec)
			if err != nil {
				writeError(ctx, http.StatusBadRequest, err)
				return
			}
			if !keep {
				ans.Dropped++
				continue
			}
		}
		records = append(records, rec)
	}

	res, err := a.storage.Store(ctx.Request.Context(), records)
	if err != nil {
		log.Error().Err(err).Msg("failed to store records")
		writeError(ctx, http.StatusBadGateway, err)
		return
	}
	ans.Indexed = res.Indexed
	ans.Failed = res.Failed
	ans.FirstError = res.FirstError
	ctx.JSON(http.StatusOK, ans)
}

func (a *Actions) searchExpression(ctx *gin.Context) (filter.Expression, bool) {
	var criteria filter.Criteria
	if err := a.decodeBody(ctx, &criteria, true); err != nil {
		writeError(ctx, bodyErrorStatus(err), err)
		return nil, false
	}
	log.Debug().Interface("criteria", criteria).Msg("search criteria")
	return filter.Build(criteria), true
}

// Search returns log lines matching posted criteria
func (a *Actions) Search(ctx *gin.Context) {
	expr, ok := a.searchExpression(ctx)
	if !ok {
		return
	}
	records, err := a.storage.Query(ctx.Request.Context(), expr)
	if err != nil {
		log.Error().Err(err).Msg("failed to search records")
		writeError(ctx, http.StatusBadGateway, err)
		return
	}
	ans := LogMessageList{Items: make([]LogMessage, len(records))}
	for i, rec := range records {
		ans.Items[i] = LogMessage{Message: rec.String()}
	}
	ctx.JSON(http.StatusOK, ans)
}

// Delete removes log lines matching posted criteria
func (a *Actions) Delete(ctx *gin.Context) {
	expr, ok := a.searchExpression(ctx)
	if !ok {
		return
	}
	removed, err := a.storage.Delete(ctx.Request.Context(), expr)
	if err != nil {
		log.Error().Err(err).Int("removed", removed).Msg("failed to remove records")
		writeError(ctx, http.StatusBadGateway, err)
		return
	}
	ctx.JSON(http.StatusOK, deleteResponse{Deleted: removed})
}

// NewActions creates REST API handlers. The transformer is optional.
func NewActions(
	storage LogStorage,
	transformer RecordTransformer,
	maxIngestItems int,
	maxBodyBytes int64,
	version string,
) *Actions {
	return &Actions{
		storage:        storage,
		transformer:    transformer,
		idxInit:        &indexInitializer{storage: storage},
		maxIngestItems: maxIngestItems,
		maxBodyBytes:   maxBodyBytes,
		version:        version,
	}
}
