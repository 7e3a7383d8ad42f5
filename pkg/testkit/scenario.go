// Package testkit runs JSON-scenario-driven REST API tests.
//
// A scenario is an ordered list of HTTP steps fired against one
// http.Handler. Cookies set by a step are sent with the following steps,
// so a scenario behaves like one browser session: add to cart, read the
// cart back, check out.
//
//	testdata/scenarios/
//	  checkout.json          ← scenario
//	  checkout_order.json    ← expected response body for a step (optional)
//
// Example _test.go:
//
//	func TestScenarios(t *testing.T) {
//	    testkit.RunDir(t, handler, "testdata/scenarios")
//	}
package testkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes one session's worth of requests.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`

	// resolved at load time, not in JSON
	dir string
}

// Step is one request and what its response must look like.
type Step struct {
	Name    string            `json:"name"`
	Method  string            `json:"method"` // GET, POST, DELETE; defaults to GET
	URL     string            `json:"url"`
	Body    json.RawMessage   `json:"body"` // sent as application/json when set
	Headers map[string]string `json:"headers"`

	ExpectedCode int `json:"expectedCode"`

	// Expect is matched as a subset: every key it names must be present in
	// the response with an equal value; other keys are ignored.
	Expect json.RawMessage `json:"expect"`

	// ResponseFileName is compared with the whole response body.
	ResponseFileName string `json:"responseFileName"`
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

// validate performs basic sanity checks and fills step defaults.
func (s *Scenario) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("at least one step is required")
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.URL == "" {
			return fmt.Errorf("steps[%d].url is required", i)
		}
		if st.ExpectedCode == 0 {
			return fmt.Errorf("steps[%d].expectedCode is required", i)
		}
		if st.Method == "" {
			st.Method = "GET"
		}
		if st.Name == "" {
			st.Name = fmt.Sprintf("%02d %s %s", i+1, st.Method, st.URL)
		}
	}
	return nil
}

// ResponseBodyPath returns the absolute path of a step's expected response
// file, resolved relative to the scenario file. "" when not set.
func (s *Scenario) ResponseBodyPath(st Step) string {
	if st.ResponseFileName == "" {
		return ""
	}
	if filepath.IsAbs(st.ResponseFileName) {
		return st.ResponseFileName
	}
	return filepath.Join(s.dir, st.ResponseFileName)
}

// LoadAllFromDir loads every *.json file in dir that parses as a scenario.
// Files named *_res.json are expected-response files and are skipped.
// Files that fail to load are collected as errors.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files found in %q", dir)}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range entries {
		if isResponseFile(path) {
			continue
		}
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}

func isResponseFile(path string) bool {
	base := filepath.Base(path)
	return len(base) > len("_res.json") && base[len(base)-len("_res.json"):] == "_res.json"
}
