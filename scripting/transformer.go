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
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"

	"logsvc/logline"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Transformer applies a user defined Lua function `transform(rec)`
// to parsed records. The function receives a table with `timestamp`,
// `level`, `module` and `message` keys and returns either a (possibly
// modified) table or nil to drop the record.
//
// A Lua state cannot be shared between goroutines so the transformer
// keeps a fixed pool of them, each with the same compiled script.
type Transformer struct {
	states chan *lua.LState
	name   string
}

func newState(proto *lua.FunctionProto) (*lua.LState, error) {
	L := lua.NewState()
	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, err
	}
	if _, ok := L.GetGlobal(transformFnName).(*lua.LFunction); !ok {
		L.Close()
		return nil, ErrMissingTransformFn
	}
	return L, nil
}

// NewTransformer compiles provided source code and prepares
// `poolSize` Lua states to run it.
func NewTransformer(name, sourceCode string, poolSize int) (*Transformer, error) {
	if poolSize < 1 {
		return nil, fmt.Errorf("invalid Lua state pool size %d", poolSize)
	}
	chunk, err := parse.Parse(strings.NewReader(sourceCode), name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script %s: %w", name, err)
	}
	t := &Transformer{states: make(chan *lua.LState, poolSize), name: name}
	for i := 0; i < poolSize; i++ {
		L, err := newState(proto)
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("failed to process script %s: %w", name, err)
		}
		t.states <- L
	}
	log.Info().Str("script", name).Int("poolSize", poolSize).Msg("prepared record transformation script")
	return t, nil
}

// LoadTransformer creates a Transformer out of a Lua script file
func LoadTransformer(srcPath string, poolSize int) (*Transformer, error) {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", srcPath, err)
	}
	return NewTransformer(srcPath, string(src), poolSize)
}

// Transform runs the script's `transform` function on the record.
// The returned flag is false in case the script dropped the record.
// The script is interrupted once ctx is done.
func (t *Transformer) Transform(ctx context.Context, rec logline.Record) (logline.Record, bool, error) {
	var L *lua.LState
	select {
	case L = <-t.states:
	case <-ctx.Done():
		return logline.Record{}, false, ctx.Err()
	}
	L.SetContext(ctx)
	defer func() {
		L.RemoveContext()
		t.states <- L
	}()

	err := L.CallByParam(
		lua.P{
			Fn:      L.GetGlobal(transformFnName),
			NRet:    1,
			Protect: true,
		},
		importRecord(L, rec),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return logline.Record{}, false, fmt.Errorf(
				"script %s interrupted: %w", t.name, ctxErr)
		}
		return logline.Record{}, false, fmt.Errorf(
			"failed to transform record using script %s: %w", t.name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	switch tRet := ret.(type) {
	case *lua.LNilType:
		return logline.Record{}, false, nil
	case *lua.LTable:
		ans, err := exportRecord(tRet)
		if err != nil {
			return logline.Record{}, false, fmt.Errorf(
				"failed to transform record using script %s: %w", t.name, err)
		}
		return ans, true, nil
	}
	return logline.Record{}, false, fmt.Errorf(
		"failed to transform record using script %s - expected table or nil, got %s",
		t.name, reflect.TypeOf(ret))
}

// Close releases all the Lua states. The transformer
// must not be used afterwards.
func (t *Transformer) Close() {
	for {
		select {
		case L := <-t.states:
			L.Close()
		default:
			return
		}
	}
}
