package hooks

import (
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"
)

// contextHook tags each entry with the file:line of the code that logged it.
type contextHook struct {
}

func NewContextHook() contextHook {
	return contextHook{}
}

func (hook contextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire walks the goroutine stack past this hook and logrus itself. Stack lines
// come in pairs (func, file:line) so once inside a frame we step by 2.
func (hook contextHook) Fire(entry *logrus.Entry) error {
	stack := debug.Stack()
	lines := strings.Split(string(stack), "\n")
	foundLoggerBlock := false
	incr := 1
	for i := 0; i < len(lines); i = i + incr {
		if strings.Contains(lines[i], "context_hook.go:") {
			foundLoggerBlock = true
			incr = 2
			continue
		}
		if !foundLoggerBlock || strings.Contains(lines[i], "sirupsen/logrus") {
			continue
		}
		ctx := strings.Split(lines[i], "ice/")
		if fields := strings.Fields(ctx[len(ctx)-1]); len(fields) > 0 {
			entry.Data["file:line"] = fields[0]
			break
		}
	}
	return nil
}
