package goroutine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

func TestSafeGoWithContext_RecoversPanic(t *testing.T) {
	log := &recordingLogger{}
	rh := NewRecoveryHandler(log)

	rh.SafeGoWithContext(context.Background(), func(context.Context) {
		panic("boom")
	})
	rh.Wait()

	assert.Len(t, log.msgs, 1)
	assert.Contains(t, log.msgs[0], "boom")
}

func TestSafeGoWithContext_PassesContext(t *testing.T) {
	rh := NewRecoveryHandler(&recordingLogger{})
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	var got any
	rh.SafeGoWithContext(ctx, func(c context.Context) {
		got = c.Value(key{})
	})
	rh.Wait()

	assert.Equal(t, "v", got)
}
