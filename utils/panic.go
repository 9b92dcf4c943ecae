package utils

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

func PanicRecovery(log *zap.Logger) {
	if r := recover(); r != nil {
		log.With(zap.String("stack", string(debug.Stack())), zap.String("panic", fmt.Sprint(r))).Error("recovered panic")
	}
}

// Go runs fn in a new goroutine that logs instead of crashing on panic.
func Go(log *zap.Logger, fn func()) {
	go func() {
		defer PanicRecovery(log)
		fn()
	}()
}
