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

// Package filter turns search criteria into an engine-neutral
// conjunction of match conditions.
package filter

// Field identifies a logical record field a clause applies to.
// Mapping to actual document fields is up to a storage backend.
type Field string

const (
	FieldTimestamp Field = "timestamp"
	FieldLevel     Field = "level"
	FieldModule    Field = "module"
	FieldMessage   Field = "message"
)

// ClauseKind distinguishes between supported filter conditions
type ClauseKind int

const (
	// RangeClause bounds a field by inclusive From and/or To values.
	// An empty bound means the respective side is open.
	RangeClause ClauseKind = iota

	// TermClause requires a field to be exactly equal to Value
	TermClause
)

func (k ClauseKind) String() string {
	switch k {
	case RangeClause:
		return "range"
	case TermClause:
		return "term"
	}
	return "unknown"
}

// Clause is a single match condition
type Clause struct {
	Kind  ClauseKind
	Field Field
	Value string
	From  string
	To    string
}

// Expression is an ordered conjunction of clauses.
// An empty expression matches all records.
type Expression []Clause

// IsMatchAll tests whether the expression has no clauses
func (expr Expression) IsMatchAll() bool {
	return len(expr) == 0
}

// Criteria describes a search (or delete) request.
// Any subset of the fields may be empty.
type Criteria struct {
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Level   string `json:"level,omitempty"`
	Module  string `json:"module,omitempty"`
	Message string `json:"message,omitempty"`
}

// IsEmpty tests whether no criterion is set
func (c Criteria) IsEmpty() bool {
	return c.Start == "" && c.End == "" && c.Level == "" && c.Module == "" && c.Message == ""
}

func appendTerm(expr Expression, field Field, value string) Expression {
	if value == "" {
		return expr
	}
	return append(expr, Clause{Kind: TermClause, Field: field, Value: value})
}

// Build creates a filter expression out of provided criteria.
// Clauses always come in the same order: timestamp range, level,
// module and message. Both time bounds end up in a single range
// clause. Empty criteria produce an empty (match-all) expression.
func Build(c Criteria) Expression {
	expr := make(Expression, 0, 4)
	if c.Start != "" || c.End != "" {
		expr = append(expr, Clause{Kind: RangeClause, Field: FieldTimestamp, From: c.Start, To: c.End})
	}
	expr = appendTerm(expr, FieldLevel, c.Level)
	expr = appendTerm(expr, FieldModule, c.Module)
	expr = appendTerm(expr, FieldMessage, c.Message)
	return expr
}
