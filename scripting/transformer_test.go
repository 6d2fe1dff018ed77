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
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"logsvc/logline"

	"github.com/stretchr/testify/assert"
)

const upperLevelScript = `
function transform(rec)
    if rec.level == "DEBUG" then
        return nil
    end
    rec.level = string.upper(rec.level)
    return rec
end
`

func TestTransformModifiesRecord(t *testing.T) {
	tr, err := NewTransformer("test", upperLevelScript, 2)
	assert.NoError(t, err)
	defer tr.Close()
	rec, ok, err := tr.Transform(context.Background(), logline.Parse("2022-01-01 warn api - slow"))
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, logline.Record{Timestamp: "2022-01-01", Level: "WARN", Module: "api", Message: "slow"}, rec)
}

func TestTransformDropsRecord(t *testing.T) {
	tr, err := NewTransformer("test", upperLevelScript, 1)
	assert.NoError(t, err)
	defer tr.Close()
	_, ok, err := tr.Transform(context.Background(), logline.Parse("2022-01-01 DEBUG api - noise"))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTransformNumbersAndMissingAttrs(t *testing.T) {
	tr, err := NewTransformer("test", `function transform(rec) return {timestamp = 1641000000, message = rec.message} end`, 1)
	assert.NoError(t, err)
	defer tr.Close()
	rec, ok, err := tr.Transform(context.Background(), logline.Parse("x y z - hello"))
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, logline.Record{Timestamp: "1641000000", Message: "hello"}, rec)
}

func TestTransformInvalidAttrType(t *testing.T) {
	tr, err := NewTransformer("test", `function transform(rec) rec.level = {} return rec end`, 1)
	assert.NoError(t, err)
	defer tr.Close()
	_, _, err = tr.Transform(context.Background(), logline.Parse("x y z"))
	assert.ErrorIs(t, err, ErrFailedTypeAssertion)
	var aErr InvalidAttrError
	assert.True(t, errors.As(err, &aErr))
	assert.Equal(t, "level", aErr.Attr)
}

func TestTransformInvalidReturnValue(t *testing.T) {
	tr, err := NewTransformer("test", `function transform(rec) return 42 end`, 1)
	assert.NoError(t, err)
	defer tr.Close()
	_, _, err = tr.Transform(context.Background(), logline.Parse("x"))
	assert.Error(t, err)
}

func TestTransformRuntimeError(t *testing.T) {
	tr, err := NewTransformer("test", `function transform(rec) error("boom") end`, 1)
	assert.NoError(t, err)
	defer tr.Close()
	_, _, err = tr.Transform(context.Background(), logline.Parse("x"))
	assert.ErrorContains(t, err, "boom")
	// the state must stay usable after a failed call
	_, _, err = tr.Transform(context.Background(), logline.Parse("x"))
	assert.ErrorContains(t, err, "boom")
}

func TestNewTransformerMissingFunction(t *testing.T) {
	_, err := NewTransformer("test", `x = 1`, 1)
	assert.ErrorIs(t, err, ErrMissingTransformFn)
}

func TestNewTransformerSyntaxError(t *testing.T) {
	_, err := NewTransformer("test", `function transform(rec`, 1)
	assert.Error(t, err)
}

func TestNewTransformerInvalidPoolSize(t *testing.T) {
	_, err := NewTransformer("test", upperLevelScript, 0)
	assert.Error(t, err)
}

func TestTransformCancelled(t *testing.T) {
	tr, err := NewTransformer("test", upperLevelScript, 1)
	assert.NoError(t, err)
	defer tr.Close()
	L := <-tr.states
	defer func() { tr.states <- L }()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = tr.Transform(ctx, logline.Parse("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

const loopingScript = `
function transform(rec)
    if rec.level == "LOOP" then
        while true do end
    end
    return rec
end
`

func TestTransformStopsLoopingScriptOnDeadline(t *testing.T) {
	tr, err := NewTransformer("test", loopingScript, 1)
	assert.NoError(t, err)
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	started := time.Now()
	_, ok, err := tr.Transform(ctx, logline.Parse("2022-01-01 LOOP api - forever"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ok)
	assert.Less(t, time.Since(started), 2*time.Second)

	// the state must be usable again
	rec, ok, err := tr.Transform(context.Background(), logline.Parse("2022-01-01 INFO api - ok"))
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ok", rec.Message)
}

func TestTransformConcurrent(t *testing.T) {
	tr, err := NewTransformer("test", upperLevelScript, 3)
	assert.NoError(t, err)
	defer tr.Close()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, ok, err := tr.Transform(context.Background(), logline.Parse("2022-01-01 info api - x"))
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "INFO", rec.Level)
		}()
	}
	wg.Wait()
}

func TestLoadTransformer(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "transform.lua")
	assert.NoError(t, os.WriteFile(srcPath, []byte(upperLevelScript), 0644))
	tr, err := LoadTransformer(srcPath, 1)
	assert.NoError(t, err)
	tr.Close()

	_, err = LoadTransformer(filepath.Join(t.TempDir(), "missing.lua"), 1)
	assert.Error(t, err)
}
