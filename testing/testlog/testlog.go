// Package testlog provides a test logger and helpers to check log output.
package testlog

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

// Hook is a hook designed for dealing with logs in test scenarios.
type Hook struct {
	sync.Mutex
	entries []*logrus.Entry
}

// New sets up a test logger that produces no output. Use the returned hook to
// observe and make assertions about what was logged. The logger is at debug
// level so sampled debug lines are observable.
func New() (*logrus.Logger, *Hook) {
	l := logrus.New()
	l.Out = io.Discard
	l.Level = logrus.DebugLevel

	hook := new(Hook)
	l.Hooks.Add(hook)

	return l, hook
}

// Entries is a thread safe accessor for all entries.
func (t *Hook) Entries() []*logrus.Entry {
	t.Lock()
	defer t.Unlock()

	res := make([]*logrus.Entry, len(t.entries))

	for idx, e := range t.entries {
		res[idx] = &logrus.Entry{
			Logger:  e.Logger,
			Time:    e.Time,
			Data:    e.Data,
			Message: e.Message,
			Level:   e.Level,
		}
	}
	return res
}

// Levels complies to the Hook interface.
func (t *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire complies to the Hook interface.
func (t *Hook) Fire(e *logrus.Entry) error {
	t.Lock()
	defer t.Unlock()

	t.entries = append(t.entries, e)
	return nil
}

// LastEntry returns the last entry that was logged or nil.
func (t *Hook) LastEntry() (l *logrus.Entry) {
	t.Lock()
	defer t.Unlock()

	if i := len(t.entries) - 1; i >= 0 {
		return t.entries[i]
	}
	return nil
}

// String returns the string representation of all the entries cumulatively
// logged in this Hook.
func (t *Hook) String() string {
	var res []string
	for _, e := range t.Entries() {
		if s, err := e.String(); err == nil {
			res = append(res, s)
		}
	}
	return strings.Join(res, " ")
}

// Reset removes all Entries from this test hook.
func (t *Hook) Reset() {
	t.Lock()
	defer t.Unlock()

	t.entries = nil
}

// CheckContained verifies that at least one of strs has been logged.
func (t *Hook) CheckContained(tb testing.TB, strs ...string) {
	tb.Helper()

	if strs == nil {
		return
	}

	out := t.String()
	for _, str := range strs {
		if contains(out, str) {
			return
		}
	}
	tb.Fatalf("got entries:\n%v\nexpected to find:\n%v\n", out, strs)
}

// CheckNotContained verifies that none of strs has been logged.
func (t *Hook) CheckNotContained(tb testing.TB, strs ...string) {
	tb.Helper()

	out := t.String()
	for _, str := range strs {
		if contains(out, str) {
			tb.Fatalf("got `%s` expected none in %s", str, out)
		}
	}
}

// CheckAllContained verifies that all of strs have been logged.
func (t *Hook) CheckAllContained(tb testing.TB, strs ...string) {
	tb.Helper()

	out := t.String()
	for _, str := range strs {
		if !contains(out, str) {
			tb.Fatalf("got entries: `%v` expected to find: `%v`", out, strs)
		}
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, canonicalizeQuotes(needle))
}

func canonicalizeQuotes(str string) string {
	chunks := strings.Split(str, "=")
	if len(chunks) != 2 {
		return str
	}

	key := chunks[0]
	val, err := strconv.Unquote(chunks[1])
	if err != nil {
		return str
	}

	if needsQuoting(val) {
		return fmt.Sprintf("%s=%q", key, val)
	}

	return fmt.Sprintf("%s=%s", key, val)
}

// Doesn't need quoting: a-z, A-Z, 0-9, '@', '-', '+', '.', '_', '/', & '^'
func needsQuoting(text string) bool {
	for _, ch := range text {
		if !((ch >= '@' && ch <= 'Z') ||
			(ch >= 'a' && ch <= 'z') ||
			(ch >= '.' && ch <= '9') ||
			(ch >= '^' && ch <= '_') ||
			ch == '+' || ch == '-') {
			return true
		}
	}
	return false
}
