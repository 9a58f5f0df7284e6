package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	accessToken  string
	refreshToken string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		s.tc.Backend.Reset()
		return ctx, nil
	})

	// Background steps
	sc.Step(`^the admin gateway is running$`, s.theAdminGatewayIsRunning)
	sc.Step(`^the backend reports my role as "([^"]*)"$`, s.theBackendReportsMyRoleAs)
	sc.Step(`^the backend rejects my token$`, s.theBackendRejectsMyToken)
	sc.Step(`^the backend answers "([^"]*)" with status (\d+) and body:$`, s.theBackendAnswers)

	// Authentication steps
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInAs)
	sc.Step(`^I log in as "([^"]*)" with the correct password$`, s.iLogInWithCorrectPassword)
	sc.Step(`^I am logged in as "([^"]*)"$`, s.iAmLoggedInAs)
	sc.Step(`^a deactivated account "([^"]*)"$`, s.aDeactivatedAccount)

	// Request steps
	sc.Step(`^I send "([^"]*)" to "([^"]*)"$`, s.iSend)
	sc.Step(`^I send "([^"]*)" to "([^"]*)" without credentials$`, s.iSendWithoutCredentials)
	sc.Step(`^I send "([^"]*)" to "([^"]*)" with body:$`, s.iSendWithBody)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response message should be "([^"]*)"$`, s.theResponseMessageShouldBe)
	sc.Step(`^the response should not be successful$`, s.theResponseShouldNotBeSuccessful)
	sc.Step(`^the response body should equal:$`, s.theResponseBodyShouldEqual)

	// Backend assertions
	sc.Step(`^the backend should have received "([^"]*)" "([^"]*)"$`, s.theBackendShouldHaveReceived)
	sc.Step(`^the backend query should be "([^"]*)"$`, s.theBackendQueryShouldBe)
	sc.Step(`^the backend body should be:$`, s.theBackendBodyShouldBe)
	sc.Step(`^the backend should not have been called$`, s.theBackendShouldNotHaveBeenCalled)

	registerTokenSteps(sc, s)
}

// Background steps

func (s *StepsContext) theAdminGatewayIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) theBackendReportsMyRoleAs(role string) error {
	s.tc.Backend.SetCallerRole(role)
	return nil
}

func (s *StepsContext) theBackendRejectsMyToken() error {
	s.tc.Backend.SetCallerRole("")
	return nil
}

func (s *StepsContext) theBackendAnswers(path string, status int, body *godog.DocString) error {
	s.tc.Backend.Respond(path, status, body.Content)
	return nil
}

// Authentication steps

func (s *StepsContext) iLogInAs(email, password string) error {
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	if err := s.request(http.MethodPost, "/api/auth/login", bytes.NewReader(payload), ""); err != nil {
		return err
	}

	if s.response.StatusCode == http.StatusOK {
		var out struct {
			Data struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			} `json:"data"`
		}
		if err := json.Unmarshal(s.responseBody, &out); err != nil {
			return fmt.Errorf("failed to parse login response: %w", err)
		}
		s.accessToken = out.Data.AccessToken
		s.refreshToken = out.Data.RefreshToken
	}
	return nil
}

func (s *StepsContext) iLogInWithCorrectPassword(email string) error {
	return s.iLogInAs(email, adminPassword)
}

func (s *StepsContext) iAmLoggedInAs(email string) error {
	if err := s.iLogInWithCorrectPassword(email); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusOK)
}

// aDeactivatedAccount stores an inactive administrator sharing the admin
// password. The seeded admin row is not modified.
func (s *StepsContext) aDeactivatedAccount(email string) error {
	hash, err := directory.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	u := directory.DefaultAdmin(email, hash)
	u.ID = "inactive-" + strings.ReplaceAll(directory.NormalizeEmail(email), "@", "-at-")
	u.IsActive = false
	return s.tc.Directory.Save(context.Background(), u)
}

// Request steps

func (s *StepsContext) request(method, path string, body io.Reader, authorization string) error {
	req, err := http.NewRequest(method, s.tc.ServerURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) authorization() string {
	if s.accessToken == "" {
		return ""
	}
	return "Bearer " + s.accessToken
}

func (s *StepsContext) iSend(method, path string) error {
	return s.request(method, path, nil, s.authorization())
}

func (s *StepsContext) iSendWithoutCredentials(method, path string) error {
	return s.request(method, path, nil, "")
}

func (s *StepsContext) iSendWithBody(method, path string, body *godog.DocString) error {
	return s.request(method, path, strings.NewReader(body.Content), s.authorization())
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) envelope() (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &out); err != nil {
		return nil, fmt.Errorf("response is not JSON: %q", string(s.responseBody))
	}
	return out, nil
}

func (s *StepsContext) theResponseMessageShouldBe(expected string) error {
	out, err := s.envelope()
	if err != nil {
		return err
	}
	if out["message"] != expected {
		return fmt.Errorf("expected message %q, got %v", expected, out["message"])
	}
	return nil
}

func (s *StepsContext) theResponseShouldNotBeSuccessful() error {
	out, err := s.envelope()
	if err != nil {
		return err
	}
	if out["success"] != false {
		return fmt.Errorf("expected success=false, got %v", out["success"])
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldEqual(expected *godog.DocString) error {
	actual := strings.TrimSpace(string(s.responseBody))
	if actual != strings.TrimSpace(expected.Content) {
		return fmt.Errorf("expected body %q, got %q", expected.Content, actual)
	}
	return nil
}

// Backend assertions

func (s *StepsContext) lastCall() (BackendCall, error) {
	calls := s.tc.Backend.Calls()
	if len(calls) == 0 {
		return BackendCall{}, fmt.Errorf("the backend received no request")
	}
	return calls[len(calls)-1], nil
}

func (s *StepsContext) theBackendShouldHaveReceived(method, path string) error {
	call, err := s.lastCall()
	if err != nil {
		return err
	}
	if call.Method != method || call.Path != path {
		return fmt.Errorf("expected %s %s, backend got %s %s", method, path, call.Method, call.Path)
	}
	if call.Auth != s.authorization() {
		return fmt.Errorf("expected Authorization %q to be forwarded, got %q", s.authorization(), call.Auth)
	}
	return nil
}

func (s *StepsContext) theBackendQueryShouldBe(expected string) error {
	call, err := s.lastCall()
	if err != nil {
		return err
	}
	if call.RawQuery != expected {
		return fmt.Errorf("expected query %q, got %q", expected, call.RawQuery)
	}
	return nil
}

func (s *StepsContext) theBackendBodyShouldBe(expected *godog.DocString) error {
	call, err := s.lastCall()
	if err != nil {
		return err
	}
	var want, got interface{}
	if err := json.Unmarshal([]byte(expected.Content), &want); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(call.Body), &got); err != nil {
		return fmt.Errorf("backend body is not JSON: %q", call.Body)
	}
	wantJSON, _ := json.Marshal(want)
	gotJSON, _ := json.Marshal(got)
	if !bytes.Equal(wantJSON, gotJSON) {
		return fmt.Errorf("expected backend body %s, got %s", wantJSON, gotJSON)
	}
	return nil
}

func (s *StepsContext) theBackendShouldNotHaveBeenCalled() error {
	if calls := s.tc.Backend.Calls(); len(calls) > 0 {
		return fmt.Errorf("expected no backend calls, got %d", len(calls))
	}
	return nil
}
