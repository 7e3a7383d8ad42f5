package testkit

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func AssertStatusCode(t *testing.T, label string, want int, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, want, rec.Code, "[%s] status code\nbody: %s", label, rec.Body.String())
}

// AssertJSONBody compares the whole response with the saved response file.
// Key order and whitespace are ignored. An empty file skips the check.
func AssertJSONBody(t *testing.T, label string, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}
	assert.JSONEq(t, string(expected), string(actual), "[%s] response body", label)
}

// AssertJSONSubset passes when every key of expected is present in actual
// with an equal value. Extra keys in actual are ignored.
func AssertJSONSubset(t *testing.T, label string, expected, actual []byte) {
	t.Helper()

	var want, got any
	if err := json.Unmarshal(expected, &want); err != nil {
		t.Fatalf("[%s] expect block: %v", label, err)
	}
	if err := json.Unmarshal(actual, &got); err != nil {
		assert.Fail(t, fmt.Sprintf("[%s] response is not JSON", label), "%v\nbody: %s", err, actual)
		return
	}

	if diffs := DiffJSON("", want, got); len(diffs) > 0 {
		assert.Fail(t, fmt.Sprintf("[%s] response does not match expect", label),
			"%s\nbody: %s", strings.Join(diffs, "\n"), actual)
	}
}

// DiffJSON lists the places where actual departs from expected. Objects are
// compared on expected's keys, in sorted order. Arrays must match in length
// and element by element.
func DiffJSON(path string, expected, actual any) []string {
	at := keyPath(path)

	switch want := expected.(type) {
	case map[string]any:
		got, ok := actual.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("  %s: want object, got %T", at, actual)}
		}
		var diffs []string
		keys := lo.Keys(want)
		slices.Sort(keys)
		for _, k := range keys {
			v, found := got[k]
			if !found {
				diffs = append(diffs, fmt.Sprintf("  %s.%s: missing", at, k))
				continue
			}
			diffs = append(diffs, DiffJSON(path+"."+k, want[k], v)...)
		}
		return diffs

	case []any:
		got, ok := actual.([]any)
		if !ok {
			return []string{fmt.Sprintf("  %s: want array, got %T", at, actual)}
		}
		var diffs []string
		if len(want) != len(got) {
			diffs = append(diffs, fmt.Sprintf("  %s: want %d elements, got %d", at, len(want), len(got)))
		}
		for i, n := 0, min(len(want), len(got)); i < n; i++ {
			diffs = append(diffs, DiffJSON(fmt.Sprintf("%s[%d]", path, i), want[i], got[i])...)
		}
		return diffs
	}

	if fmt.Sprint(expected) != fmt.Sprint(actual) {
		return []string{fmt.Sprintf("  %s:\n    - %v\n    + %v", at, expected, actual)}
	}
	return nil
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
