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

// Package audit records the trail produced by a rule evaluation: the
// audit/audit_log/log/send_notification builtins, and the orchestrator's
// own evaluate/batch_evaluate lifecycle events.
package audit

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rulekit/ruleengine/evalctx"
)

// Recorder is called to persist audit trail entries produced by a rule
// evaluation.
type Recorder interface {
	// Events records the audit/audit_log/log/send_notification calls a
	// single evaluation accumulated in its Context.
	Events(ruleCode string, events []evalctx.AuditEvent)
	// Evaluation records the outcome of one evaluate/evaluate_by_code call.
	Evaluation(ruleCode string, d time.Duration, status string, err error)
}

// NewLogrusRecorder creates a Recorder that logs to a logrus.Logger.
func NewLogrusRecorder(l *logrus.Logger) Recorder {
	return &logrusRecorder{log: l.WithField("system", "audit")}
}

const auditLogMessage = "rule audit trail"

type logrusRecorder struct {
	log *logrus.Entry
}

// Events implements Recorder.
func (r *logrusRecorder) Events(ruleCode string, events []evalctx.AuditEvent) {
	for _, ev := range events {
		r.log.WithFields(logrus.Fields{
			"rule_code": ruleCode,
			"kind":      ev.Kind,
			"message":   ev.Message,
			"detail":    ev.Detail,
		}).Info(auditLogMessage)
	}
}

// Evaluation implements Recorder.
func (r *logrusRecorder) Evaluation(ruleCode string, d time.Duration, status string, err error) {
	fields := logrus.Fields{
		"rule_code": ruleCode,
		"action":    "evaluate",
		"duration":  d,
		"status":    status,
	}
	if err != nil {
		fields["err"] = err
	}
	r.log.WithFields(fields).Info(auditLogMessage)
}

// NoopRecorder discards every event. Used when no audit collaborator is
// configured.
type NoopRecorder struct{}

func (NoopRecorder) Events(string, []evalctx.AuditEvent)             {}
func (NoopRecorder) Evaluation(string, time.Duration, string, error) {}
