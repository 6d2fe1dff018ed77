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
	"encoding/json"
	"fmt"

	"logsvc/filter"
	"logsvc/logline"
)

const (
	fieldDatetime = "dt"
	fieldLevel    = "level"
	fieldModule   = "module"
	fieldMsgExact = "msg.keyword"
	fieldMsg      = "msg"
)

// docField maps a logical record field to an indexed field
// suitable for exact matching
func docField(f filter.Field) (string, error) {
	switch f {
	case filter.FieldTimestamp:
		return fieldDatetime, nil
	case filter.FieldLevel:
		return fieldLevel, nil
	case filter.FieldModule:
		return fieldModule, nil
	case filter.FieldMessage:
		return fieldMsgExact, nil
	}
	return "", fmt.Errorf("unsupported filter field '%s'", f)
}

// ----------------- query --------------------------

type rangeExpr struct {
	From string `json:"gte,omitempty"`
	To   string `json:"lte,omitempty"`
}

type rangeObj struct {
	Range map[string]rangeExpr `json:"range"`
}

type termObj struct {
	Term map[string]string `json:"term"`
}

type boolObj struct {
	Filter []any `json:"filter"`
}

type query struct {
	Bool boolObj `json:"bool"`
}

type sortExpr struct {
	Order        string `json:"order"`
	UnmappedType string `json:"unmapped_type,omitempty"`
}

type srchQuery struct {
	Query  *query                `json:"query,omitempty"`
	Size   int                   `json:"size"`
	Sort   []map[string]sortExpr `json:"sort,omitempty"`
	Source *bool                 `json:"_source,omitempty"`
}

func (sq *srchQuery) ToJSONQuery() ([]byte, error) {
	return json.Marshal(sq)
}

// createBoolQuery translates a filter expression into
// a "bool" query. For a match-all expression, nil is returned.
func createBoolQuery(expr filter.Expression) (*query, error) {
	if expr.IsMatchAll() {
		return nil, nil
	}
	m := boolObj{Filter: make([]any, 0, len(expr))}
	for _, clause := range expr {
		field, err := docField(clause.Field)
		if err != nil {
			return nil, err
		}
		switch clause.Kind {
		case filter.RangeClause:
			m.Filter = append(
				m.Filter,
				rangeObj{Range: map[string]rangeExpr{field: {From: clause.From, To: clause.To}}},
			)
		case filter.TermClause:
			m.Filter = append(m.Filter, termObj{Term: map[string]string{field: clause.Value}})
		default:
			return nil, fmt.Errorf("unsupported clause kind %s", clause.Kind)
		}
	}
	return &query{Bool: m}, nil
}

// CreateSearchQuery generates a JSON-encoded query for ElasticSearch
// to find at most `size` records matching the expression, oldest first.
func CreateSearchQuery(expr filter.Expression, size int) ([]byte, error) {
	if size < 1 {
		return []byte{}, fmt.Errorf("cannot load results of size < 1 (found %d)", size)
	}
	bq, err := createBoolQuery(expr)
	if err != nil {
		return []byte{}, err
	}
	q := srchQuery{
		Query: bq,
		Size:  size,
		Sort: []map[string]sortExpr{
			{fieldDatetime: {Order: "asc", UnmappedType: "date"}},
		},
	}
	return q.ToJSONQuery()
}

// createIDsQuery generates a JSON-encoded query loading just IDs
// of matching documents in chunks of size `chunkSize`
func createIDsQuery(expr filter.Expression, chunkSize int) ([]byte, error) {
	if chunkSize < 1 {
		return []byte{}, fmt.Errorf("cannot load results of size < 1 (found %d)", chunkSize)
	}
	bq, err := createBoolQuery(expr)
	if err != nil {
		return []byte{}, err
	}
	noSource := false
	q := srchQuery{
		Query:  bq,
		Size:   chunkSize,
		Sort:   []map[string]sortExpr{{"_doc": {Order: "asc"}}},
		Source: &noSource,
	}
	return q.ToJSONQuery()
}

// ----------------- scroll -------------------------

type scrollObj struct {
	Scroll   string `json:"scroll"`
	ScrollID string `json:"scroll_id"`
}

type clearScrollObj struct {
	ScrollID string `json:"scroll_id"`
}

// ----------------- result -------------------------

// Total is a number of matching documents. ElasticSearch 6
// encodes it as a plain number, newer versions use an object.
type Total struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

func (t *Total) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		t.Value = n
		t.Relation = "eq"
		return nil
	}
	var obj struct {
		Value    int    `json:"value"`
		Relation string `json:"relation"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed to decode hits.total: %w", err)
	}
	t.Value = obj.Value
	t.Relation = obj.Relation
	return nil
}

// Source is a stored log record. Documents written by other
// clients may contain non-string values, those are kept
// in their JSON form instead of failing the whole result.
type Source struct {
	logline.Record
}

func sourceAttr(doc map[string]json.RawMessage, key string) string {
	raw, ok := doc[key]
	if !ok {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode _source: %w", err)
	}
	s.Timestamp = sourceAttr(doc, fieldDatetime)
	s.Level = sourceAttr(doc, fieldLevel)
	s.Module = sourceAttr(doc, fieldModule)
	s.Message = sourceAttr(doc, fieldMsg)
	return nil
}

// ResultHit represents an individual result
type ResultHit struct {
	Index  string   `json:"_index"`
	ID     string   `json:"_id"`
	Score  *float64 `json:"_score"`
	Source Source   `json:"_source"`
}

// Hits is a "hits" part of the ElasticSearch query result object
type Hits struct {
	Total    Total       `json:"total"`
	MaxScore *float64    `json:"max_score"`
	Hits     []ResultHit `json:"hits"`
}

// Result represents an ElasticSearch query result object
type Result struct {
	ScrollID string `json:"_scroll_id"`
	Took     int    `json:"took"`
	TimedOut bool   `json:"timed_out"`
	Hits     Hits   `json:"hits"`
}

// NewEmptyResult returns a new result with Total = 0
func NewEmptyResult() Result {
	return Result{Hits: Hits{Total: Total{Relation: "eq"}}}
}
