package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
	"github.com/athebyme/gomarket-storefront/pkg/requestctx"
)

func TestGetLoggerLevel(t *testing.T) {
	assert.Equal(t, interfaces.DebugLevel, GetLoggerLevel("debug"))
	assert.Equal(t, interfaces.ErrorLevel, GetLoggerLevel("error"))
	assert.Equal(t, interfaces.InfoLevel, GetLoggerLevel("verbose"))
}

func TestSetLevelIsSharedWithDerivedLoggers(t *testing.T) {
	log, err := NewZapLogger("info", true)
	require.NoError(t, err)

	child := log.WithField("component", "test")
	log.SetLevel(interfaces.WarnLevel)

	assert.Equal(t, interfaces.WarnLevel, log.GetLevel())
	assert.Equal(t, interfaces.WarnLevel, child.GetLevel())
}

func TestConvertToZapFields(t *testing.T) {
	in := []interface{}{interfaces.LogField{Key: "slug", Value: "x"}, "plain", 1}
	out := convertToZapFields(in...)

	require.Len(t, out, 3)
	assert.Equal(t, zap.Any("slug", "x"), out[0])
	assert.Equal(t, "plain", out[1])
	assert.IsType(t, interfaces.LogField{}, in[0], "input must not be mutated")
}

func TestFieldsFromContext(t *testing.T) {
	assert.Empty(t, fieldsFromContext(context.Background()))

	ctx := requestctx.WithTraceID(requestctx.WithRequestID(context.Background(), "req-1"), "trace-1")
	fields := fieldsFromContext(ctx)
	assert.Equal(t, []interface{}{zap.String("request_id", "req-1"), zap.String("trace_id", "trace-1")}, fields)
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.InfoWithContext(context.Background(), "msg", interfaces.LogField{Key: "k", Value: 1})
		log.WithFields(interfaces.LogField{Key: "a", Value: "b"}).Error("err")
	})
}
