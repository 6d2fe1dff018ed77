// Copyright 2017 Tomas Machalek <tomas.machalek@gmail.com>
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

package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	DefaultIndex           = "log_idx"
	DefaultReqTimeoutSecs  = 10
	DefaultScrollTTL       = "1m"
	DefaultSearchChunkSize = 1000
	DefaultSearchLimit     = 100

	// maxResultWindow is ElasticSearch's default index.max_result_window
	maxResultWindow = 10000

	jsonContentType   = "application/json"
	ndjsonContentType = "application/x-ndjson"
)

// ConnectionConf defines a configuration
// required to work with ES client.
type ConnectionConf struct {
	Server         string `json:"server"`
	Index          string `json:"index"`
	ReqTimeoutSecs int    `json:"reqTimeoutSecs"`
	ScrollTTL      string `json:"scrollTtl"`

	// SearchChunkSize specifies how many matching documents
	// are loaded and removed at once within a delete operation.
	SearchChunkSize int `json:"searchChunkSize"`

	// SearchLimit is the max. number of records a search returns
	SearchLimit int `json:"searchLimit"`

	// RefreshOnWrite makes written and removed documents
	// visible to search before a bulk request returns
	RefreshOnWrite bool `json:"refreshOnWrite"`

	Username string `json:"username"`
	Password string `json:"password"`
}

// IsConfigured tests whether the configuration is considered
// to be enabled (i.e. no error checking just enabled/disabled)
func (conf *ConnectionConf) IsConfigured() bool {
	return conf.Server != ""
}

// Validate tests whether the configuration is filled in
// correctly. Missing optional values are replaced by defaults.
func (conf *ConnectionConf) Validate() error {
	if conf.Server == "" {
		return fmt.Errorf("elasticSearch.server not set")
	}
	if !strings.HasPrefix(conf.Server, "http://") && !strings.HasPrefix(conf.Server, "https://") {
		return fmt.Errorf("elasticSearch.server must be an http(s) URL, found '%s'", conf.Server)
	}
	if conf.Index == "" {
		log.Warn().Str("default", DefaultIndex).Msg("elasticSearch.index not specified, using default")
		conf.Index = DefaultIndex
	}
	if conf.ReqTimeoutSecs == 0 {
		log.Warn().
			Int("default", DefaultReqTimeoutSecs).
			Msg("elasticSearch.reqTimeoutSecs not specified, using default")
		conf.ReqTimeoutSecs = DefaultReqTimeoutSecs
	}
	if conf.ScrollTTL == "" {
		log.Warn().Str("default", DefaultScrollTTL).Msg("elasticSearch.scrollTtl not specified, using default")
		conf.ScrollTTL = DefaultScrollTTL
	}
	if conf.SearchChunkSize == 0 {
		log.Warn().
			Int("default", DefaultSearchChunkSize).
			Msg("elasticSearch.searchChunkSize not specified, using default")
		conf.SearchChunkSize = DefaultSearchChunkSize
	}
	if conf.SearchLimit == 0 {
		log.Warn().
			Int("default", DefaultSearchLimit).
			Msg("elasticSearch.searchLimit not specified, using default")
		conf.SearchLimit = DefaultSearchLimit
	}
	if conf.SearchChunkSize < 1 || conf.SearchChunkSize > maxResultWindow {
		return fmt.Errorf(
			"elasticSearch.searchChunkSize must be between 1 and %d, found %d",
			maxResultWindow, conf.SearchChunkSize)
	}
	if conf.SearchLimit < 1 || conf.SearchLimit > maxResultWindow {
		return fmt.Errorf(
			"elasticSearch.searchLimit must be between 1 and %d, found %d",
			maxResultWindow, conf.SearchLimit)
	}
	return nil
}

// -------

// ErrorCause is an error description as returned by ElasticSearch
type ErrorCause struct {
	Type      string       `json:"type"`
	Reason    string       `json:"reason"`
	RootCause []ErrorCause `json:"root_cause,omitempty"`
}

func (ec ErrorCause) String() string {
	if ec.Type == "" {
		return ec.Reason
	}
	return fmt.Sprintf("%s: %s", ec.Type, ec.Reason)
}

// ErrorResultObj describes an error response from ElasticSearch
type ErrorResultObj struct {
	Error  ErrorCause `json:"error"`
	Status int        `json:"status"`
}

func (ero ErrorResultObj) String() string {
	return ero.Error.String()
}

// ESClientError is a general response error
type ESClientError struct {
	Message    string
	StatusCode int
	Query      []byte
	ESError    ErrorResultObj
}

func (esc *ESClientError) Error() string {
	if esc.ESError.Error.Type == "" && esc.ESError.Error.Reason == "" {
		return esc.Message
	}
	return fmt.Sprintf("%s: %s", esc.Message, esc.ESError)
}

func newESClientError(message string, statusCode int, response []byte, query []byte) *ESClientError {
	var errResult ErrorResultObj
	// error responses are not guaranteed to be JSON (e.g. HEAD requests
	// or a proxy in front of the server) so we keep whatever we can get
	json.Unmarshal(response, &errResult)
	return &ESClientError{
		Message:    message,
		StatusCode: statusCode,
		Query:      query,
		ESError:    errResult,
	}
}

// ESClient is a simple ElasticSearch client
type ESClient struct {
	conf *ConnectionConf
	http *resty.Client
}

// NewClient returns an instance of ESClient. The configuration
// is expected to be validated already.
func NewClient(conf *ConnectionConf) *ESClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(conf.Server, "/")).
		SetTimeout(time.Second * time.Duration(conf.ReqTimeoutSecs)).
		SetHeader("Accept", jsonContentType)
	if conf.Username != "" {
		client.SetBasicAuth(conf.Username, conf.Password)
	}
	return &ESClient{conf: conf, http: client}
}

func (c *ESClient) String() string {
	return fmt.Sprintf("ElasticSearchClient[server: %s, index: %s]", c.conf.Server, c.conf.Index)
}

// Index returns the name of the index the client works with
func (c *ESClient) Index() string {
	return c.conf.Index
}

// HTTPClient exposes the underlying HTTP client
// (e.g. to replace its transport)
func (c *ESClient) HTTPClient() *resty.Client {
	return c.http
}

// Do sends a general request to ElasticSearch server where
// 'query' is expected to be a JSON-encoded argument object
func (c *ESClient) Do(ctx context.Context, method string, path string, query []byte) ([]byte, error) {
	return c.do(ctx, method, path, jsonContentType, query)
}

func (c *ESClient) do(
	ctx context.Context,
	method string,
	path string,
	contentType string,
	query []byte,
) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetHeader("Content-Type", contentType).SetBody(query)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return []byte{}, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 400 {
		return resp.Body(), newESClientError(
			fmt.Sprintf("request %s %s failed with code %d", method, path, resp.StatusCode()),
			resp.StatusCode(),
			resp.Body(),
			query,
		)
	}
	return resp.Body(), nil
}
