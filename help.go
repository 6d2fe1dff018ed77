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

package main

const (
	rootHelp = `logsvc accepts raw log lines over HTTP, parses them into
timestamp, level, module and message fields and stores them
in an ElasticSearch index. Stored records can be searched
and deleted with the same filter criteria.

Each input line is expected to look like:

  <timestamp> <level> <module> - <message>

Missing trailing fields are allowed.`

	serveHelp = `Start the HTTP server. The index is created lazily on the first
request in case the search engine is not ready at startup.

Routes:
  GET    /logs/about    service information
  POST   /logs          insert {"items":[{"message":"..."}]}
  POST   /logs/search   search by criteria
  DELETE /logs/search   delete by criteria

Criteria: {"start":"...", "end":"...", "level":"...", "module":"...", "message":"..."}`

	initIndexHelp = `Create the configured index with the log record mapping
unless it already exists.`

	parseHelp = `Parse log lines from a file (or stdin if no file is given)
and print one JSON document per line, exactly as it would be stored.
If a script is given, its transform function is applied to each record.`

	queryHelp = `Print the ElasticSearch search request generated for
the given criteria. No search engine connection is required.`
)
