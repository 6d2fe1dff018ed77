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

import (
	"bytes"
	"encoding/json"
	"io"

	"logsvc/elastic"
	"logsvc/filter"

	"github.com/spf13/cobra"
)

func writeQuery(dst io.Writer, criteria filter.Criteria, size int) error {
	q, err := elastic.CreateSearchQuery(filter.Build(criteria), size)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, q, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(dst)
	return err
}

func newQueryCmd() *cobra.Command {
	var criteria filter.Criteria
	var size int
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the search request for the given criteria",
		Long:  queryHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeQuery(cmd.OutOrStdout(), criteria, size)
		},
	}
	cmd.Flags().StringVar(&criteria.Start, "start", "", "lower bound of the timestamp (inclusive)")
	cmd.Flags().StringVar(&criteria.End, "end", "", "upper bound of the timestamp (inclusive)")
	cmd.Flags().StringVar(&criteria.Level, "level", "", "exact level")
	cmd.Flags().StringVar(&criteria.Module, "module", "", "exact module")
	cmd.Flags().StringVar(&criteria.Message, "message", "", "exact message")
	cmd.Flags().IntVar(&size, "size", elastic.DefaultSearchLimit, "max. number of returned records")
	return cmd
}
