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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"logsvc/api"
	"logsvc/logline"
	"logsvc/scripting"

	"github.com/spf13/cobra"
)

const (
	maxLineSize = 1024 * 1024
)

// parseLines reads log lines from src and writes a JSON
// document for each of them to dst. Lines dropped by the transformer
// are skipped.
func parseLines(
	ctx context.Context,
	src io.Reader,
	dst io.Writer,
	transformer api.RecordTransformer,
) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := json.NewEncoder(dst)
	enc.SetEscapeHTML(false)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		rec := logline.Parse(scanner.Text())
		if transformer != nil {
			var keep bool
			var err error
			rec, keep, err = transformer.Transform(ctx, rec)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
			if !keep {
				continue
			}
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}

func newParseCmd() *cobra.Command {
	var scriptPath string
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse log lines and print the resulting documents",
		Long:  parseHelp,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := cmd.InOrStdin()
			if len(args) > 0 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				src = f
			}
			var transformer api.RecordTransformer
			if scriptPath != "" {
				tr, err := scripting.LoadTransformer(scriptPath, 1)
				if err != nil {
					return err
				}
				defer tr.Close()
				transformer = tr
			}
			return parseLines(cmd.Context(), src, cmd.OutOrStdout(), transformer)
		},
	}
	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Lua script with a transform function")
	return cmd
}
