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

package function

import (
	log "github.com/sirupsen/logrus"

	"github.com/rulekit/ruleengine/value"
)

// callAudit implements the audit and notification builtins. They are
// side-effecting: audit/audit_log/log return the message so callers can
// chain it and send_notification returns true, but the record is delivered
// through rt.RecordAudit rather than computed.
func callAudit(name string, args []value.Value, rt Runtime) (value.Value, error) {
	message, isNull := stringArg(args, 0)
	if isNull {
		message = ""
	}
	var detail value.Value = value.Null{}
	if len(args) > 1 {
		detail = args[1]
	}

	switch name {
	case "audit", "audit_log":
		rt.RecordAudit("audit", message, detail)
		log.WithField("detail", detail).Info(message)
		return value.String(message), nil

	case "log":
		rt.RecordAudit("log", message, detail)
		log.WithField("detail", detail).Debug(message)
		return value.String(message), nil

	case "send_notification":
		rt.RecordAudit("notification", message, detail)
		log.WithField("detail", detail).Warn(message)
		return value.Bool(true), nil
	}
	return nil, errUnknownFunction(name)
}
