/*
 * Copyright 2024 Raamsri Kumar <raam@tinkershack.in> and The StrataSTOR Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stratastor/strata-csi/internal/constants"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultRetryCount      = 3
	defaultRetryWaitTime   = 2 * time.Second
	defaultRetryMaxWait    = 10 * time.Second
	defaultMaxIdleConns    = 10
	defaultIdleConnTimeout = 90 * time.Second
	defaultUserAgent       = "strata-csi"
)

// Client wraps resty.Client for talking to the driver's own HTTP side server.
type Client struct {
	*resty.Client
	config ClientConfig
}

type ClientConfig struct {
	BaseURL          string
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	UserAgent        string
	Headers          map[string]string

	MaxIdleConns    int
	IdleConnTimeout time.Duration

	Debug bool
}

// NewClientConfig returns a ClientConfig with defaults suited to local probes.
func NewClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:          defaultTimeout,
		RetryCount:       defaultRetryCount,
		RetryWaitTime:    defaultRetryWaitTime,
		RetryMaxWaitTime: defaultRetryMaxWait,
		UserAgent:        defaultUserAgent + "/" + constants.DriverVersion,
		Headers:          make(map[string]string),
		MaxIdleConns:     defaultMaxIdleConns,
		IdleConnTimeout:  defaultIdleConnTimeout,
	}
}

func NewClient(config ClientConfig) *Client {
	c := &Client{Client: resty.New(), config: config}
	c.applyConfig()
	return c
}

func (c *Client) applyConfig() {
	if c.config.Timeout > 0 {
		c.SetTimeout(c.config.Timeout)
	}
	if c.config.RetryCount > 0 {
		c.SetRetryCount(c.config.RetryCount)
		// Retry on 5xx as well as transport errors
		c.AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	}
	if c.config.RetryWaitTime > 0 {
		c.SetRetryWaitTime(c.config.RetryWaitTime)
	}
	if c.config.RetryMaxWaitTime > 0 {
		c.SetRetryMaxWaitTime(c.config.RetryMaxWaitTime)
	}
	if c.config.UserAgent != "" {
		c.SetHeader("User-Agent", c.config.UserAgent)
	}
	if c.config.BaseURL != "" {
		c.SetBaseURL(c.config.BaseURL)
	}
	if len(c.config.Headers) > 0 {
		c.SetHeaders(c.config.Headers)
	}

	c.SetDebug(c.config.Debug)
	if !c.config.Debug {
		c.SetLogger(NoOpLogger{})
	}

	c.SetTransport(&http.Transport{
		MaxIdleConns:    c.config.MaxIdleConns,
		IdleConnTimeout: c.config.IdleConnTimeout,
	})
}

// NoOpLogger suppresses resty's own logging.
type NoOpLogger struct{}

func (NoOpLogger) Errorf(format string, v ...interface{}) {}
func (NoOpLogger) Warnf(format string, v ...interface{})  {}
func (NoOpLogger) Debugf(format string, v ...interface{}) {}

// RequestConfig holds request-level parameters
type RequestConfig struct {
	Path        string
	Headers     map[string]string
	QueryParams map[string]string
	Result      interface{}
	Context     context.Context
}

type Request struct {
	request *resty.Request
	config  RequestConfig
}

func (c *Client) NewRequest(cfg RequestConfig) *Request {
	req := &Request{request: c.R(), config: cfg}

	if cfg.Headers != nil {
		req.request.SetHeaders(cfg.Headers)
	}
	if cfg.QueryParams != nil {
		req.request.SetQueryParams(cfg.QueryParams)
	}
	if cfg.Result != nil {
		req.request.SetResult(cfg.Result)
	}
	if cfg.Context != nil {
		req.request.SetContext(cfg.Context)
	}
	return req
}

func (r *Request) Execute(method string) (*resty.Response, error) {
	return r.request.Execute(method, r.config.Path)
}

func (r *Request) Get() (*resty.Response, error) {
	return r.Execute(http.MethodGet)
}
