package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestReadAllLimit(t *testing.T) {
	buf, err := ReadAllLimit(strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	buf, err = ReadAllLimit(strings.NewReader("hello world"), 5)
	assert.ErrorIs(t, err, ErrIOLimitReached)
	assert.Equal(t, "hello", string(buf))
}

func TestCopyLimit(t *testing.T) {
	var dst bytes.Buffer
	n, err := CopyLimit(&dst, strings.NewReader("1234"), 4)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	dst.Reset()
	_, err = CopyLimit(&dst, strings.NewReader("12345"), 4)
	assert.ErrorIs(t, err, ErrIOLimitReached)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10, "…"))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5, "…"))
	assert.Equal(t, "مرح…", Truncate("مرحبا بكم", 4, "…"))
	assert.Equal(t, "…", Truncate("abc", 0, "…"))
}

func TestLogContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	parent := zap.New(core)

	ctx, log := LogContextWith(context.Background(), parent, zap.String("a", "1"))
	ctx = LogContext(ctx, zap.String("b", "2"))

	log.Info("direct")
	GetLogFromContext(ctx, parent).Info("from context")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]any{"a": "1"}, entries[0].ContextMap())
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, entries[1].ContextMap())
}

func TestGoRecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	done := make(chan struct{})
	Go(zap.New(core), func() {
		defer close(done)
		panic("boom")
	})
	<-done

	require.Eventually(t, func() bool { return logs.Len() == 1 }, time.Second, time.Millisecond*10)
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["panic"])
}
