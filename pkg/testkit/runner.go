// Package testkit, runner.go
//
// Run() executes a single scenario against an http.Handler.
// RunDir() discovers all scenario files in a directory and runs them as subtests.
package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Run executes a single scenario from a JSON file against handler.
func Run(t *testing.T, handler http.Handler, scenarioPath string) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}

	t.Run(s.Name, func(t *testing.T) {
		runScenario(t, handler, s)
	})
}

// RunDir runs every scenario in dir as a t.Run subtest. Each scenario
// starts with an empty cookie jar.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Errorf("%v", err)
	}
	if len(scenarios) == 0 {
		t.Fatalf("testkit: no scenarios loaded from %q", dir)
	}

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, handler, s)
		})
	}
}

// ─── Internal execution ───────────────────────────────────────────────────────

func runScenario(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	jar := map[string]*http.Cookie{}
	for _, st := range s.Steps {
		rec := fire(handler, st, jar)
		label := s.Name + " / " + st.Name

		AssertStatusCode(t, label, st.ExpectedCode, rec)

		if len(st.Expect) > 0 {
			AssertJSONSubset(t, label, st.Expect, rec.Body.Bytes())
		}

		if p := s.ResponseBodyPath(st); p != "" {
			expected, err := os.ReadFile(p)
			if err != nil {
				t.Errorf("[%s] read response file %q: %v", label, p, err)
			} else {
				AssertJSONBody(t, label, expected, rec.Body.Bytes())
			}
		}

		if t.Failed() {
			// Later steps depend on this one's state.
			return
		}
	}
}

// fire sends one step with the jar's cookies and stores any cookies the
// response sets.
func fire(handler http.Handler, st Step, jar map[string]*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if len(st.Body) > 0 {
		body = bytes.NewReader(st.Body)
	}

	req := httptest.NewRequest(strings.ToUpper(st.Method), st.URL, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range st.Headers {
		req.Header.Set(k, v)
	}
	for _, c := range jar {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(jar, c.Name)
			continue
		}
		jar[c.Name] = c
	}
	return rec
}

// ─── Debug helpers ────────────────────────────────────────────────────────────

// DumpScenario prints a human-readable summary of the scenario to stdout.
func DumpScenario(s *Scenario) {
	fmt.Printf("Scenario: %s\n", s.Name)
	for i, st := range s.Steps {
		fmt.Printf("  [%d] %s %s → %d\n", i, st.Method, st.URL, st.ExpectedCode)
	}
}
