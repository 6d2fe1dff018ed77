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

import (
	"strings"
	"unicode"
)

const (
	numFields = 4

	// messagePrefix separates the module from the message
	// in lines like "2022-01-01 INFO api - started up"
	messagePrefix = "- "
)

// tokenize splits the line into at most numFields whitespace
// separated groups. The last group keeps the rest of the line
// including its inner whitespace. The returned count tells
// how many of the fields were found.
func tokenize(raw string) ([numFields]string, int) {
	var fields [numFields]string
	rest := raw
	n := 0
	for n < numFields {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}
		if n == numFields-1 {
			fields[n] = rest
			n++
			break
		}
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		}
		fields[n] = rest[:end]
		rest = rest[end:]
		n++
	}
	return fields, n
}

// Parse converts a raw log line into a Record. Fields are
// assigned positionally (timestamp, level, module, message) so
// a field is never set unless all the preceding ones are.
// The function accepts any input; whatever does not fit the
// expected format is simply left in the trailing fields.
func Parse(raw string) Record {
	fields, n := tokenize(raw)
	if n == numFields {
		fields[numFields-1] = strings.TrimPrefix(fields[numFields-1], messagePrefix)
	}
	return Record{
		Timestamp: fields[0],
		Level:     fields[1],
		Module:    fields[2],
		Message:   fields[3],
	}
}
