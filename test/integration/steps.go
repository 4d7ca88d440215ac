package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/dbperm/pkg/server/middleware"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	server       *ServerInstance
	token        string
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		s.server.Stop(ctx)
		return ctx, err
	})

	// Background steps
	sc.Step(`^a dbperm server is running$`, s.aServerIsRunning)
	sc.Step(`^the server is restarted$`, s.theServerIsRestarted)
	sc.Step(`^I am authenticated as "([^"]*)"$`, s.iAmAuthenticatedAs)
	sc.Step(`^I am not authenticated$`, s.iAmNotAuthenticated)

	// Requests
	sc.Step(`^I send a (GET|DELETE) request to "([^"]*)"$`, s.iSendRequest)
	sc.Step(`^I send a (POST|PUT) request to "([^"]*)" with body:$`, s.iSendRequestWithBody)
	sc.Step(`^a role "([^"]*)" exists with default "([^"]*)"$`, s.aRoleExists)
	sc.Step(`^role "([^"]*)" has override "([^"]*)" set to "([^"]*)"$`, s.roleHasOverride)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response should list (\d+) removed overrides?$`, s.theResponseShouldListRemoved)
	sc.Step(`^the response body should contain "([^"]*)"$`, s.theResponseBodyShouldContain)

	// Database steps
	sc.Step(`^the database should hold override "([^"]*)" = "([^"]*)" for role "([^"]*)"$`, s.databaseShouldHoldOverride)
	sc.Step(`^the database should hold no override "([^"]*)" for role "([^"]*)"$`, s.databaseShouldHoldNoOverride)
	sc.Step(`^an audit message "([^"]*)" should be recorded$`, s.auditMessageShouldBeRecorded)
}

// Background steps

func (s *StepsContext) aServerIsRunning(ctx context.Context) error {
	if err := s.tc.Reset(); err != nil {
		return err
	}
	srv, err := s.tc.StartServer(ctx)
	if err != nil {
		return err
	}
	s.server = srv
	return nil
}

func (s *StepsContext) theServerIsRestarted(ctx context.Context) error {
	s.server.Stop(ctx)
	srv, err := s.tc.StartServer(ctx)
	if err != nil {
		return err
	}
	s.server = srv
	return nil
}

func (s *StepsContext) iAmAuthenticatedAs(subject string) error {
	token, err := middleware.IssueToken(authSecret, subject, time.Hour)
	if err != nil {
		return err
	}
	s.token = token
	return nil
}

func (s *StepsContext) iAmNotAuthenticated() error {
	s.token = ""
	return nil
}

// Requests

func (s *StepsContext) do(method, path string, body []byte) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) iSendRequest(method, path string) error {
	return s.do(method, path, nil)
}

func (s *StepsContext) iSendRequestWithBody(method, path string, body *godog.DocString) error {
	return s.do(method, path, []byte(body.Content))
}

func (s *StepsContext) aRoleExists(name, level string) error {
	body, _ := json.Marshal(map[string]string{"name": name, "default": level})
	if err := s.do(http.MethodPost, "/roles", body); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusCreated)
}

func (s *StepsContext) roleHasOverride(role, node, level string) error {
	body, _ := json.Marshal(map[string]string{"level": level})
	if err := s.do(http.MethodPut, "/roles/"+role+"/overrides/"+node, body); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusOK)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response == nil {
		return fmt.Errorf("no request was sent")
	}
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

// theResponseFieldShouldBe looks up a dotted path such as "source.id" in the
// JSON response.
func (s *StepsContext) theResponseFieldShouldBe(path, expected string) error {
	var body interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	cur := body
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%q: not an object at %q", path, key)
		}
		if cur, ok = m[key]; !ok {
			return fmt.Errorf("%q: missing key %q in %s", path, key, string(s.responseBody))
		}
	}
	if actual := fmt.Sprint(cur); actual != expected {
		return fmt.Errorf("%q: expected %q, got %q", path, expected, actual)
	}
	return nil
}

func (s *StepsContext) theResponseShouldListRemoved(n int) error {
	var body struct {
		Removed []json.RawMessage `json:"removed"`
	}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return err
	}
	if len(body.Removed) != n {
		return fmt.Errorf("expected %d removed overrides, got %d: %s", n, len(body.Removed), string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldContain(text string) error {
	if !strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("expected body to contain %q, got %q", text, string(s.responseBody))
	}
	return nil
}

// Database steps

func (s *StepsContext) databaseShouldHoldOverride(node, level, role string) error {
	var got string
	err := s.tc.DB.Raw(
		"SELECT level FROM permission_overrides WHERE role_name = ? AND node_id = ?", role, node,
	).Row().Scan(&got)
	if err != nil {
		return fmt.Errorf("override %s for %s: %w", node, role, err)
	}
	if got != level {
		return fmt.Errorf("override %s for %s: expected %s, got %s", node, role, level, got)
	}
	return nil
}

func (s *StepsContext) databaseShouldHoldNoOverride(node, role string) error {
	var count int64
	err := s.tc.DB.Raw(
		"SELECT count(*) FROM permission_overrides WHERE role_name = ? AND node_id = ?", role, node,
	).Row().Scan(&count)
	if err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("expected no override %s for %s, found %d", node, role, count)
	}
	return nil
}

func (s *StepsContext) auditMessageShouldBeRecorded(msgid string) error {
	var count int64
	if err := s.tc.DB.Raw("SELECT count(*) FROM audit_messages WHERE msgid = ?", msgid).Row().Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no audit message with msgid %q", msgid)
	}
	return nil
}
