package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

func registerTokenSteps(sc *godog.ScenarioContext, s *StepsContext) {
	sc.Step(`^I should receive an access token with role "([^"]*)"$`, s.iShouldReceiveAnAccessTokenWithRole)
	sc.Step(`^the refresh token should not verify as an access token$`, s.theRefreshTokenShouldNotVerifyAsAccess)
	sc.Step(`^I refresh my tokens$`, s.iRefreshMyTokens)
	sc.Step(`^I verify my access token$`, s.iVerifyMyAccessToken)
}

func (s *StepsContext) verifier() (*token.Issuer, error) {
	return token.NewIssuer(token.Config{AccessSecret: accessSecret, RefreshSecret: refreshSecret})
}

func (s *StepsContext) iShouldReceiveAnAccessTokenWithRole(role string) error {
	if s.accessToken == "" {
		return fmt.Errorf("no access token in response: %s", string(s.responseBody))
	}
	issuer, err := s.verifier()
	if err != nil {
		return err
	}
	claims, err := issuer.VerifyAccess(s.accessToken)
	if err != nil {
		return fmt.Errorf("access token does not verify: %w", err)
	}
	if claims.Role != role {
		return fmt.Errorf("expected role %q, got %q", role, claims.Role)
	}
	return nil
}

func (s *StepsContext) theRefreshTokenShouldNotVerifyAsAccess() error {
	issuer, err := s.verifier()
	if err != nil {
		return err
	}
	if _, err := issuer.VerifyAccess(s.refreshToken); err == nil {
		return fmt.Errorf("refresh token was accepted as an access token")
	}
	return nil
}

func (s *StepsContext) iRefreshMyTokens() error {
	payload, _ := json.Marshal(map[string]string{"refreshToken": s.refreshToken})
	if err := s.request(http.MethodPost, "/api/auth/refresh", bytes.NewReader(payload), ""); err != nil {
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
			return err
		}
		s.accessToken = out.Data.AccessToken
		s.refreshToken = out.Data.RefreshToken
	}
	return nil
}

func (s *StepsContext) iVerifyMyAccessToken() error {
	return s.request(http.MethodGet, "/api/auth/verify", nil, s.authorization())
}
