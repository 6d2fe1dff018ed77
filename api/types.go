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
	"context"

	"logsvc/elastic"
	"logsvc/filter"
	"logsvc/logline"
)

// LogStorage is a storage and search backend for parsed records
type LogStorage interface {
	EnsureIndex(ctx context.Context) error
	Store(ctx context.Context, records []logline.Record) (elastic.IngestResult, error)
	Query(ctx context.Context, expr filter.Expression) ([]logline.Record, error)
	Delete(ctx context.Context, expr filter.Expression) (int, error)
}

// RecordTransformer can modify or drop parsed records
// before they are stored
type RecordTransformer interface {
	Transform(ctx context.Context, rec logline.Record) (logline.Record, bool, error)
}

// LogMessage is a single raw (on input) or formatted
// (on output) log line
type LogMessage struct {
	Message string `json:"message"`
}

// LogMessageList is both an insert request payload
// and a search response
type LogMessageList struct {
	Items []LogMessage `json:"items"`
}

type ingestResponse struct {
	Indexed    int    `json:"indexed"`
	Failed     int    `json:"failed"`
	Dropped    int    `json:"dropped,omitempty"`
	FirstError string `json:"firstError,omitempty"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

type aboutResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type errorResponse struct {
	Error string `json:"error"`
}
