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

package scripting

import (
	"errors"
	"fmt"

	"logsvc/logline"

	lua "github.com/yuin/gopher-lua"
)

const (
	transformFnName = "transform"
)

var (
	ErrFailedTypeAssertion = errors.New("failed type assertion")
	ErrMissingTransformFn  = errors.New("missing `transform` function")
)

type InvalidAttrError struct {
	Attr string
}

func (err InvalidAttrError) Error() string {
	return fmt.Sprintf("error accessing attribute '%s'", err.Attr)
}

func importRecord(L *lua.LState, rec logline.Record) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("timestamp", lua.LString(rec.Timestamp))
	tbl.RawSetString("level", lua.LString(rec.Level))
	tbl.RawSetString("module", lua.LString(rec.Module))
	tbl.RawSetString("message", lua.LString(rec.Message))
	return tbl
}

func exportStringAttr(tbl *lua.LTable, name string) (string, error) {
	switch tv := tbl.RawGetString(name).(type) {
	case lua.LString:
		return string(tv), nil
	case *lua.LNilType:
		return "", nil
	case lua.LNumber:
		return tv.String(), nil
	}
	return "", fmt.Errorf("%w: %w", InvalidAttrError{Attr: name}, ErrFailedTypeAssertion)
}

// exportRecord converts a Lua table back to a record. Missing
// attributes are taken as empty, numbers are converted to strings.
func exportRecord(tbl *lua.LTable) (logline.Record, error) {
	var rec logline.Record
	var err error
	if rec.Timestamp, err = exportStringAttr(tbl, "timestamp"); err != nil {
		return rec, err
	}
	if rec.Level, err = exportStringAttr(tbl, "level"); err != nil {
		return rec, err
	}
	if rec.Module, err = exportStringAttr(tbl, "module"); err != nil {
		return rec, err
	}
	if rec.Message, err = exportStringAttr(tbl, "message"); err != nil {
		return rec, err
	}
	return rec, nil
}
