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
	"sync"
	"sync/atomic"
)

// indexInitializer creates the storage index on first use.
// The search engine is often not ready yet when the service
// starts so a failed attempt is repeated with the next request.
type indexInitializer struct {
	storage LogStorage
	done    atomic.Bool
	mu      sync.Mutex
}

func (ii *indexInitializer) ensure(ctx context.Context) error {
	if ii.done.Load() {
		return nil
	}
	ii.mu.Lock()
	defer ii.mu.Unlock()
	if ii.done.Load() {
		return nil
	}
	if err := ii.storage.EnsureIndex(ctx); err != nil {
		return err
	}
	ii.done.Store(true)
	return nil
}
