package log

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StructuredLogger traces operations as a sequence of step, success and
// error events sharing the operation name, request id and parameters.
type StructuredLogger struct {
	name  string
	level zapcore.Level
	ctx   context.Context
}

// NewDebugLogger returns a logger emitting steps and successes at debug
// level. Errors are always logged at error level.
func NewDebugLogger(name string) *StructuredLogger {
	return &StructuredLogger{name: name, level: zapcore.DebugLevel}
}

func NewInfoLogger(name string) *StructuredLogger {
	return &StructuredLogger{name: name, level: zapcore.InfoLevel}
}

func (l *StructuredLogger) WithContext(ctx context.Context) *StructuredLogger {
	l2 := *l
	l2.ctx = ctx
	return &l2
}

func (l *StructuredLogger) Operation(name string) *OperationBuilder {
	fields := []zap.Field{zap.String("operation", name)}
	if l.ctx != nil {
		if id := middleware.GetReqID(l.ctx); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
	}
	return &OperationBuilder{logger: l, fields: fields}
}

type OperationBuilder struct {
	logger *StructuredLogger
	fields []zap.Field
}

func (b *OperationBuilder) WithParam(key string, value any) *OperationBuilder {
	b.fields = append(b.fields, zap.Any(key, value))
	return b
}

func (b *OperationBuilder) WithString(key, value string) *OperationBuilder {
	b.fields = append(b.fields, zap.String(key, value))
	return b
}

func (b *OperationBuilder) WithBool(key string, value bool) *OperationBuilder {
	b.fields = append(b.fields, zap.Bool(key, value))
	return b
}

func (b *OperationBuilder) WithInt(key string, value int) *OperationBuilder {
	b.fields = append(b.fields, zap.Int(key, value))
	return b
}

func (b *OperationBuilder) WithUint64(key string, value uint64) *OperationBuilder {
	b.fields = append(b.fields, zap.Uint64(key, value))
	return b
}

// WithRequestBody logs the decoded request body. Only use it for bodies
// without secrets.
func (b *OperationBuilder) WithRequestBody(key string, body any) *OperationBuilder {
	b.fields = append(b.fields, zap.Any(key, body))
	return b
}

func (b *OperationBuilder) Build() *OperationTracer {
	return &OperationTracer{
		logger: zap.L().Named(b.logger.name).With(b.fields...),
		level:  b.logger.level,
		start:  time.Now(),
	}
}

type OperationTracer struct {
	logger *zap.Logger
	level  zapcore.Level
	start  time.Time
}

func (t *OperationTracer) Step(name string) *LogEvent {
	return &LogEvent{tracer: t, level: t.level, msg: "step", fields: []zap.Field{zap.String("step", name)}}
}

func (t *OperationTracer) Success() *LogEvent {
	return &LogEvent{tracer: t, level: t.level, msg: "success", fields: []zap.Field{zap.Duration("duration", time.Since(t.start))}}
}

func (t *OperationTracer) Error(err error) *LogEvent {
	return &LogEvent{tracer: t, level: zapcore.ErrorLevel, msg: "error", fields: []zap.Field{zap.Error(err), zap.Duration("duration", time.Since(t.start))}}
}

type LogEvent struct {
	tracer *OperationTracer
	level  zapcore.Level
	msg    string
	fields []zap.Field
}

func (e *LogEvent) WithString(key, value string) *LogEvent {
	e.fields = append(e.fields, zap.String(key, value))
	return e
}

func (e *LogEvent) WithInt(key string, value int) *LogEvent {
	e.fields = append(e.fields, zap.Int(key, value))
	return e
}

func (e *LogEvent) WithInt64(key string, value int64) *LogEvent {
	e.fields = append(e.fields, zap.Int64(key, value))
	return e
}

func (e *LogEvent) WithUint64(key string, value uint64) *LogEvent {
	e.fields = append(e.fields, zap.Uint64(key, value))
	return e
}

func (e *LogEvent) WithBool(key string, value bool) *LogEvent {
	e.fields = append(e.fields, zap.Bool(key, value))
	return e
}

func (e *LogEvent) WithParam(key string, value any) *LogEvent {
	e.fields = append(e.fields, zap.Any(key, value))
	return e
}

func (e *LogEvent) Log() {
	if ce := e.tracer.logger.Check(e.level, e.msg); ce != nil {
		ce.Write(e.fields...)
	}
}
