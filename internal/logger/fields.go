package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by log entries across packages.
const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldRequestID = "request_id"
	FieldRemoteIP  = "remote_ip"
	FieldPostingID = "posting_id"
	FieldTitle     = "title"
)

// Pairs turns alternating key/value strings into zap fields. Blank keys or
// values are skipped, a trailing key without value is ignored.
func Pairs(kv ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, value := strings.TrimSpace(kv[i]), strings.TrimSpace(kv[i+1])
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// With attaches fields to log. A nil log becomes a no-op logger.
func With(log *zap.Logger, fields ...zap.Field) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

// ProviderFields describe the AI provider and model behind a call.
func ProviderFields(provider, model string) []zap.Field {
	return Pairs(FieldProvider, provider, FieldModel, model)
}

func WithProvider(log *zap.Logger, provider, model string) *zap.Logger {
	return With(log, ProviderFields(provider, model)...)
}

// RequestFields identify an HTTP request.
func RequestFields(requestID, remoteIP string) []zap.Field {
	return Pairs(FieldRequestID, requestID, FieldRemoteIP, remoteIP)
}

func WithRequest(log *zap.Logger, requestID, remoteIP string) *zap.Logger {
	return With(log, RequestFields(requestID, remoteIP)...)
}

// PostingFields identify the posting a log entry is about.
func PostingFields(id, title string) []zap.Field {
	return Pairs(FieldPostingID, id, FieldTitle, title)
}
