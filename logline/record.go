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

package logline

import "fmt"

// Record is a structured form of a single raw log line
// as stored in the search engine.
type Record struct {
	Timestamp string `json:"dt,omitempty"`
	Level     string `json:"level,omitempty"`
	Module    string `json:"module,omitempty"`
	Message   string `json:"msg,omitempty"`
}

// IsEmpty tests whether no field of the record is set
func (rec Record) IsEmpty() bool {
	return rec.Timestamp == "" && rec.Level == "" && rec.Module == "" && rec.Message == ""
}

// String renders the record in the form clients receive
// as search results: "<timestamp> <level> <module> - <message>"
func (rec Record) String() string {
	return fmt.Sprintf("%s %s %s - %s", rec.Timestamp, rec.Level, rec.Module, rec.Message)
}
