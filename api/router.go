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
	"net/http"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/gin-gonic/gin"
)

// NewRouter creates an HTTP engine with all the API routes
func NewRouter(actions *Actions) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinMiddleware())
	engine.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, errorResponse{Error: "action not found"})
	})

	logs := engine.Group("/logs", actions.EnsureIndex)
	logs.GET("/about", actions.About)
	logs.POST("", actions.Insert)
	logs.POST("/search", actions.Search)
	logs.DELETE("/search", actions.Delete)
	return engine
}
