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

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEmptyCriteria(t *testing.T) {
	expr := Build(Criteria{})
	assert.True(t, expr.IsMatchAll())
	assert.Len(t, expr, 0)
}

func TestBuildStartOnly(t *testing.T) {
	expr := Build(Criteria{Start: "2020-01-01"})
	assert.Len(t, expr, 1)
	assert.Equal(t, RangeClause, expr[0].Kind)
	assert.Equal(t, FieldTimestamp, expr[0].Field)
	assert.Equal(t, "2020-01-01", expr[0].From)
	assert.Empty(t, expr[0].To)
}

func TestBuildEndOnly(t *testing.T) {
	expr := Build(Criteria{End: "2022-12-31"})
	assert.Equal(t, Expression{{Kind: RangeClause, Field: FieldTimestamp, To: "2022-12-31"}}, expr)
}

func TestBuildRangeAndLevel(t *testing.T) {
	expr := Build(Criteria{Start: "2020-01-01", End: "2022-12-31", Level: "INFO"})
	assert.Equal(
		t,
		Expression{
			{Kind: RangeClause, Field: FieldTimestamp, From: "2020-01-01", To: "2022-12-31"},
			{Kind: TermClause, Field: FieldLevel, Value: "INFO"},
		},
		expr,
	)
}

func TestBuildLevelOnly(t *testing.T) {
	expr := Build(Criteria{Level: "ERROR"})
	assert.Equal(t, Expression{{Kind: TermClause, Field: FieldLevel, Value: "ERROR"}}, expr)
}

func TestBuildOrderIsFixed(t *testing.T) {
	expr := Build(Criteria{
		Message: "From 2022: This is an INFO level log message!",
		Module:  "api",
		Level:   "INFO",
		End:     "2022-12-31",
		Start:   "2020-01-01",
	})
	assert.Len(t, expr, 4)
	assert.Equal(t, FieldTimestamp, expr[0].Field)
	assert.Equal(t, FieldLevel, expr[1].Field)
	assert.Equal(t, FieldModule, expr[2].Field)
	assert.Equal(t, FieldMessage, expr[3].Field)
	assert.Equal(t, TermClause, expr[3].Kind)
	assert.Equal(t, "From 2022: This is an INFO level log message!", expr[3].Value)
}

func TestBuildSkipsEmptyValues(t *testing.T) {
	expr := Build(Criteria{Module: "api"})
	assert.Equal(t, Expression{{Kind: TermClause, Field: FieldModule, Value: "api"}}, expr)
}

func TestCriteriaIsEmpty(t *testing.T) {
	assert.True(t, Criteria{}.IsEmpty())
	assert.False(t, Criteria{Message: "x"}.IsEmpty())
}

func TestClauseKindString(t *testing.T) {
	assert.Equal(t, "range", RangeClause.String())
	assert.Equal(t, "term", TermClause.String())
}
