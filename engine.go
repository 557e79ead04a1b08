// Copyright 2024 The RuleKit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ruleengine is the Rule Orchestrator (spec.md §4.7, component C7):
// it drives parse → validate → resolve constants → evaluate, assembles the
// EvalResult, and is the only package that talks to every collaborator
// (parsed-AST cache, persistence store, HTTP client, audit recorder) at
// once.
package ruleengine

import (
	"context"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rulekit/ruleengine/audit"
	"github.com/rulekit/ruleengine/collaborator"
	"github.com/rulekit/ruleengine/eval"
	"github.com/rulekit/ruleengine/evalctx"
	"github.com/rulekit/ruleengine/parser"
	"github.com/rulekit/ruleengine/rule"
	"github.com/rulekit/ruleengine/rulecache"
	"github.com/rulekit/ruleengine/validator"
	"github.com/rulekit/ruleengine/value"
)

// defaults mirror spec.md §4.7's batch semantics and §5's cancellation
// rules.
const (
	defaultBatchConcurrency = 10
	maxBatchConcurrency     = 50
	defaultRequestTimeout   = 30 * time.Second
	defaultCacheCapacity    = 1000
	defaultCacheTTL         = 10 * time.Minute
)

// Config configures an Engine. A zero Config is valid: it runs with no rule
// store and no HTTP collaborator (evaluate_by_code then fails, and any
// rest_call node surfaces a transport error captured as a result map).
type Config struct {
	Persistence   collaborator.Persistence
	HTTP          eval.HTTPClient
	Audit         audit.Recorder
	CacheCapacity int           // parsed-AST cache size; 0 uses defaultCacheCapacity
	CacheTTL      time.Duration // 0 uses defaultCacheTTL
}

// Engine is the Rule Orchestrator.
type Engine struct {
	persistence collaborator.Persistence
	http        eval.HTTPClient
	recorder    audit.Recorder
	cache       *rulecache.Cache
	clock       func() time.Time
}

// New creates an Engine with the given configuration. Use NewDefault for an
// Engine with an in-memory rule store and a real HTTP collaborator.
func New(cfg *Config) *Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	capacity := cfg.CacheCapacity
	if capacity == 0 {
		capacity = defaultCacheCapacity
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	recorder := cfg.Audit
	if recorder == nil {
		recorder = audit.NoopRecorder{}
	}
	return &Engine{
		persistence: cfg.Persistence,
		http:        cfg.HTTP,
		recorder:    recorder,
		cache:       rulecache.New(capacity, ttl),
		clock:       time.Now,
	}
}

// NewDefault creates an Engine backed by an in-memory rule store and a
// retrying HTTP collaborator, for standalone use without an external
// persistence integration.
func NewDefault() *Engine {
	mem := collaborator.NewMemoryPersistence(nil)
	return New(&Config{
		Persistence: mem,
		HTTP:        collaborator.NewRetryableHTTP(0),
	})
}

// EvalOptions controls a single evaluate/evaluate_by_code call.
type EvalOptions struct {
	// Validate runs the semantic validator first; a blocking report (any
	// ERROR or CRITICAL issue) fails the evaluation without running it.
	Validate bool
	// Timeout bounds the whole evaluation, including constant loading and
	// any rest_call; 0 uses defaultRequestTimeout.
	Timeout time.Duration
}

// ErrorInfo is EvalResult's error field (spec.md §4.7 "error?: {code,
// message}").
type ErrorInfo struct {
	Code    string
	Message string
}

// CircuitInfo reports whether the evaluation was halted by a CircuitBreaker
// action.
type CircuitInfo struct {
	Triggered bool
	Message   string
}

// EvalResult is the Rule Orchestrator's result (spec.md §4.7).
type EvalResult struct {
	Success         bool
	ConditionResult bool
	Outputs         map[string]value.Value
	ExecutionTimeMs int64
	CircuitBreaker  CircuitInfo
	Error           *ErrorInfo
	Metadata        map[string]interface{}
}

// Evaluate implements `evaluate(rule_text, inputs, options)`.
func (e *Engine) Evaluate(ctx context.Context, ruleText string, inputs map[string]value.Value, opts EvalOptions) (*EvalResult, error) {
	doc, err := e.parse(ruleText)
	if err != nil {
		return failureResult(err, "PARSE_ERROR"), nil
	}
	return e.run(ctx, doc, inputs, opts)
}

// EvaluateByCode implements `evaluate_by_code(rule_code, inputs, options)`,
// consulting the Persistence collaborator for the stored document.
func (e *Engine) EvaluateByCode(ctx context.Context, ruleCode string, inputs map[string]value.Value, opts EvalOptions) (*EvalResult, error) {
	if e.persistence == nil {
		return failureResult(errNoPersistence, "NO_PERSISTENCE"), nil
	}
	doc, err := e.persistence.LoadRuleByCode(ctx, ruleCode)
	if err != nil {
		return failureResult(err, "RULE_NOT_FOUND"), nil
	}
	return e.run(ctx, doc, inputs, opts)
}

// Validate implements `validate(rule_text) → ValidationReport`.
func (e *Engine) Validate(ruleText string) (*validator.Report, error) {
	doc, warnings, err := parser.ParseYAML(ruleText)
	if err != nil {
		return nil, err
	}
	return validator.Validate(doc, warnings), nil
}

func (e *Engine) parse(ruleText string) (*rule.Document, error) {
	key := rulecache.Digest(ruleText)
	if doc, ok := e.cache.Get(key); ok {
		return doc, nil
	}
	doc, _, err := parser.ParseYAML(ruleText)
	if err != nil {
		return nil, err
	}
	e.cache.Put(key, doc)
	return doc, nil
}

// run executes the shared parse-result → validate → resolve constants →
// evaluate → assemble pipeline (spec.md §4.7 "Data flow").
func (e *Engine) run(ctx context.Context, doc *rule.Document, inputs map[string]value.Value, opts EvalOptions) (*EvalResult, error) {
	start := e.clock()

	if opts.Validate {
		report := validator.Validate(doc, nil)
		if report.Blocking() {
			return &EvalResult{
				Success: false,
				Error:   &ErrorInfo{Code: "VALIDATION_FAILED", Message: "rule document failed validation"},
				Metadata: map[string]interface{}{
					"quality_score": report.Summary.QualityScore,
				},
			}, nil
		}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	constants, err := e.loadConstants(runCtx, doc)
	if err != nil {
		return failureResult(err, "EXTERNAL_ERROR"), nil
	}

	evCtx := evalctx.New(inputs, constants)
	ev := eval.New(evCtx, e.http, e.clock)

	done := make(chan error, 1)
	go func() { done <- ev.RunLogic(runCtx, doc.Logic) }()

	var runErr error
	select {
	case runErr = <-done:
	case <-runCtx.Done():
		runErr = runCtx.Err()
	}

	elapsed := e.clock().Sub(start).Milliseconds()
	e.recorder.Evaluation(doc.Name(), time.Duration(elapsed)*time.Millisecond, statusFor(runErr, evCtx.CircuitTriggered), runErr)
	if len(evCtx.AuditEvents) > 0 {
		e.recorder.Events(doc.Name(), evCtx.AuditEvents)
		// Persisting the audit trail is fire-and-forget (spec.md §6
		// Persistence collaborator): a slow or unavailable store must never
		// add latency to the caller's result.
		if e.persistence != nil {
			go e.persistence.RecordAudit(doc.Name(), evCtx.AuditEvents)
		}
	}

	if runErr != nil {
		code := "EVAL_ERROR"
		if runCtx.Err() != nil {
			if runCtx.Err() == context.DeadlineExceeded {
				code = "DEADLINE_EXCEEDED"
			} else {
				code = "CANCELLED"
			}
		}
		return &EvalResult{
			Success:         false,
			ExecutionTimeMs: elapsed,
			CircuitBreaker:  CircuitInfo{Triggered: evCtx.CircuitTriggered, Message: evCtx.CircuitMessage},
			Error:           &ErrorInfo{Code: code, Message: runErr.Error()},
		}, nil
	}

	return &EvalResult{
		Success:         true,
		ConditionResult: conditionResult(doc.Logic, evCtx),
		Outputs:         ev.BuildOutput(doc),
		ExecutionTimeMs: elapsed,
		CircuitBreaker:  CircuitInfo{Triggered: evCtx.CircuitTriggered, Message: evCtx.CircuitMessage},
	}, nil
}

// conditionResult reports whether the rule's top-level when/if matched.
// Sequence logic has no single top-level condition, so it is reported true
// once the sequence completes without being cut short by the circuit
// breaker.
func conditionResult(logic rule.Logic, evCtx *evalctx.Context) bool {
	switch logic.Shape {
	case rule.LogicSimple, rule.LogicStructured:
		return !evCtx.CircuitTriggered
	default:
		return true
	}
}

func statusFor(err error, circuitTriggered bool) string {
	switch {
	case err != nil:
		return "failed"
	case circuitTriggered:
		return "short_circuited"
	default:
		return "completed"
	}
}

func (e *Engine) loadConstants(ctx context.Context, doc *rule.Document) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(doc.Constants))
	for _, c := range doc.Constants {
		out[c.Name] = c.Default
	}
	if e.persistence == nil || len(doc.Constants) == 0 {
		return out, nil
	}
	names := make([]string, len(doc.Constants))
	for i, c := range doc.Constants {
		names[i] = c.Name
	}
	stored, err := e.persistence.LoadConstants(ctx, names)
	if err != nil {
		return nil, err
	}
	for name, v := range stored {
		out[name] = v
	}
	return out, nil
}

func failureResult(err error, code string) *EvalResult {
	return &EvalResult{Success: false, Error: &ErrorInfo{Code: code, Message: err.Error()}}
}

var errNoPersistence = noPersistenceError{}

type noPersistenceError struct{}

func (noPersistenceError) Error() string {
	return "evaluate_by_code requires a Persistence collaborator"
}

// BatchRequest is one unit of work submitted to BatchEvaluate.
type BatchRequest struct {
	RuleText string
	RuleCode string // used when RuleText is empty
	Inputs   map[string]value.Value
	Options  EvalOptions
	Priority int
}

// BatchOptions controls BatchEvaluate (spec.md §4.7 "Batch semantics").
type BatchOptions struct {
	// Concurrency caps in-flight evaluations; 0 uses defaultBatchConcurrency,
	// values above maxBatchConcurrency are clamped down to it.
	Concurrency int
	FailFast    bool
	// ReturnPartialResults controls whether completed results are returned
	// when Timeout elapses before every request finishes.
	ReturnPartialResults bool
	Timeout              time.Duration
	SortByPriority       bool
}

// BatchResult is BatchEvaluate's return value: one EvalResult per request,
// in the original request order regardless of completion order or
// priority-sort dispatch order.
type BatchResult struct {
	Results   []*EvalResult
	Completed int
	TimedOut  bool
}

// BatchEvaluate implements `batch_evaluate(requests, batch_options)`.
// Requests run concurrently under a semaphore; priority sorting (when
// requested) only changes dispatch order, not the positions results are
// written back to.
func (e *Engine) BatchEvaluate(ctx context.Context, requests []BatchRequest, opts BatchOptions) (*BatchResult, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	if concurrency > maxBatchConcurrency {
		concurrency = maxBatchConcurrency
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	batchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	order := make([]int, len(requests))
	for i := range order {
		order[i] = i
	}
	if opts.SortByPriority {
		sort.SliceStable(order, func(a, b int) bool {
			return requests[order[a]].Priority > requests[order[b]].Priority
		})
	}

	results := make([]*EvalResult, len(requests))
	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(batchCtx)
	g.SetLimit(concurrency)

	for _, idx := range order {
		idx := idx
		req := requests[idx]
		g.Go(func() error {
			var res *EvalResult
			var err error
			if req.RuleText != "" {
				res, err = e.Evaluate(gctx, req.RuleText, req.Inputs, req.Options)
			} else {
				res, err = e.EvaluateByCode(gctx, req.RuleCode, req.Inputs, req.Options)
			}
			if err != nil {
				res = failureResult(err, "EVAL_ERROR")
			}
			mu.Lock()
			results[idx] = res
			completed++
			mu.Unlock()
			if opts.FailFast && !res.Success {
				return errBatchFailFast
			}
			return nil
		})
	}

	waitErr := g.Wait()
	timedOut := batchCtx.Err() == context.DeadlineExceeded

	if timedOut && !opts.ReturnPartialResults {
		return &BatchResult{TimedOut: true}, nil
	}
	if waitErr != nil && waitErr != errBatchFailFast && !timedOut {
		log.WithError(waitErr).Warn("batch_evaluate: sibling request error")
	}

	return &BatchResult{Results: results, Completed: completed, TimedOut: timedOut}, nil
}

var errBatchFailFast = batchFailFastError{}

type batchFailFastError struct{}

func (batchFailFastError) Error() string { return "batch_evaluate: fail_fast stop" }
