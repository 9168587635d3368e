// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package diagnose runs self-tests that help a user tell a bad key from a
// bad network.
package diagnose

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/completion"
	"github.com/davetashner/gloss/internal/conversation"
	"github.com/davetashner/gloss/internal/credential"
	"github.com/davetashner/gloss/internal/llm"
	"github.com/davetashner/gloss/internal/prompt"
	"github.com/davetashner/gloss/internal/redact"
)

const (
	// DefaultCheckTimeout bounds the key check.
	DefaultCheckTimeout = 10 * time.Second

	// TestMessage is sent by TestFullCall.
	TestMessage = "Hello, this is a test message. Please respond in Chinese."

	// ExpectedModel is reported on by TestAPIKey.
	ExpectedModel = "gpt-4o"
)

// KeyCheck is the outcome of TestAPIKey.
type KeyCheck struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	ErrorKind  apperr.Kind `json:"errorKind,omitempty"`
	KeyPrefix  string      `json:"keyPrefix,omitempty"`
	KeySource  string      `json:"keySource,omitempty"`
	ModelCount int         `json:"modelCount"`
	HasModel   bool        `json:"hasModel"`
	Model      string      `json:"model,omitempty"`
}

// CallCheck is the outcome of TestFullCall.
type CallCheck struct {
	Success      bool        `json:"success"`
	Result       string      `json:"result,omitempty"`
	ResultLength int         `json:"resultLength"`
	Error        string      `json:"error,omitempty"`
	ErrorKind    apperr.Kind `json:"errorKind,omitempty"`
}

// Probe is a reachability target for TestNetwork.
type Probe struct {
	Name    string
	URL     string
	Timeout time.Duration
	// Endpoint marks the completion endpoint's own host.
	Endpoint bool
}

// ProbeResult is the outcome of one probe.
type ProbeResult struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Endpoint   bool   `json:"endpoint"`
	Success    bool   `json:"success"`
	DurationMS int64  `json:"durationMs,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Diagnosis aggregates every check.
type Diagnosis struct {
	Timestamp time.Time     `json:"timestamp"`
	APIKey    KeyCheck      `json:"apiKey"`
	Network   []ProbeResult `json:"network"`
	FullCall  *CallCheck    `json:"fullCall,omitempty"`
}

// DefaultProbes returns a general internet probe and a probe of the
// completion endpoint's origin.
func DefaultProbes(endpoint string) []Probe {
	probes := []Probe{{Name: "Google", URL: "https://www.google.com", Timeout: 5 * time.Second}}
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		probes = append(probes, Probe{
			Name:     "Endpoint",
			URL:      u.Scheme + "://" + u.Host,
			Timeout:  10 * time.Second,
			Endpoint: true,
		})
	}
	return probes
}

// Diagnoser runs the checks.
type Diagnoser struct {
	resolver     *credential.Resolver
	factory      llm.Factory
	client       *completion.Client
	probes       []Probe
	httpClient   *http.Client
	checkTimeout time.Duration
}

// Option configures a Diagnoser.
type Option func(*Diagnoser)

// WithProbes replaces the network probes.
func WithProbes(p []Probe) Option {
	return func(d *Diagnoser) { d.probes = p }
}

// WithHTTPClient sets the client used for network probes.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Diagnoser) { d.httpClient = c }
}

// WithCheckTimeout overrides DefaultCheckTimeout.
func WithCheckTimeout(t time.Duration) Option {
	return func(d *Diagnoser) {
		if t > 0 {
			d.checkTimeout = t
		}
	}
}

// New returns a Diagnoser.
func New(resolver *credential.Resolver, factory llm.Factory, client *completion.Client, opts ...Option) *Diagnoser {
	d := &Diagnoser{
		resolver:     resolver,
		factory:      factory,
		client:       client,
		httpClient:   http.DefaultClient,
		checkTimeout: DefaultCheckTimeout,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// TestAPIKey lists models with the resolved key. It never returns an
// error; failures are described in the result.
func (d *Diagnoser) TestAPIKey(ctx context.Context) KeyCheck {
	cred, ok := d.resolver.Resolve(ctx, "")
	if !ok {
		return KeyCheck{Error: "no API key configured", ErrorKind: apperr.KindMissingCredential}
	}
	check := KeyCheck{KeyPrefix: redact.Mask(cred.Key), KeySource: string(cred.Source)}

	provider, err := d.factory(cred.Key)
	if err != nil {
		return failKey(check, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.checkTimeout)
	defer cancel()

	models, err := provider.ListModels(ctx)
	if err != nil {
		return failKey(check, err)
	}

	check.Success = true
	check.Message = "API connection OK"
	check.ModelCount = len(models)
	check.Model = ExpectedModel
	check.HasModel = slices.Contains(models, ExpectedModel)
	return check
}

func failKey(check KeyCheck, err error) KeyCheck {
	check.Error = redact.String(err.Error())
	check.ErrorKind = apperr.KindOf(err)
	if check.ErrorKind == "" {
		check.ErrorKind = apperr.KindUpstream
	}
	return check
}

// TestFullCall sends TestMessage through the completion client on a
// throwaway session, so the user's conversation is left alone.
func (d *Diagnoser) TestFullCall(ctx context.Context) CallCheck {
	cred, ok := d.resolver.Resolve(ctx, "")
	if !ok {
		return CallCheck{Error: "no API key configured", ErrorKind: apperr.KindMissingCredential}
	}

	pkg := prompt.Package{User: TestMessage, ResponseLanguage: prompt.ResponseLanguage}
	result, err := d.client.Complete(ctx, conversation.NewSession("diagnose"), pkg, cred.Key, false)
	if err != nil {
		return CallCheck{Error: redact.String(err.Error()), ErrorKind: apperr.KindOf(err)}
	}
	return CallCheck{Success: true, Result: result, ResultLength: len([]rune(result))}
}

// TestNetwork probes every target concurrently with a HEAD request. Any
// HTTP response counts as reachable.
func (d *Diagnoser) TestNetwork(ctx context.Context) []ProbeResult {
	results := make([]ProbeResult, len(d.probes))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range d.probes {
		g.Go(func() error {
			results[i] = d.probe(gctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Diagnoser) probe(ctx context.Context, p Probe) ProbeResult {
	res := ProbeResult{Name: p.Name, URL: p.URL, Endpoint: p.Endpoint}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = d.checkTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			res.Error = "connection timed out"
		} else {
			res.Error = err.Error()
		}
		return res
	}
	_ = resp.Body.Close()
	res.Success = true
	res.DurationMS = time.Since(start).Milliseconds()
	return res
}

// FullDiagnosis runs the key check and network probes, then the full call
// if the key check passed.
func (d *Diagnoser) FullDiagnosis(ctx context.Context) Diagnosis {
	diag := Diagnosis{Timestamp: time.Now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		diag.APIKey = d.TestAPIKey(gctx)
		return nil
	})
	g.Go(func() error {
		diag.Network = d.TestNetwork(gctx)
		return nil
	})
	_ = g.Wait()

	if diag.APIKey.Success {
		call := d.TestFullCall(ctx)
		diag.FullCall = &call
	}
	return diag
}
