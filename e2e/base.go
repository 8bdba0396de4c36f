package e2e

import (
	"bytes"
	"chat-client/api"
	"chat-client/auth"
	"chat-client/domain"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseSuite talks to a running chat API. Scenarios are skipped when no
// endpoint is configured.
type BaseSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.HTTPEndpoint == "" || s.Config.WSEndpoint == "" {
		s.T().Skip("CHAT_HTTP_ENDPOINT and CHAT_WS_ENDPOINT are required for e2e scenarios")
	}
	s.Log = logs.GetLoggerFromLevel(slog.LevelDebug)
}

// Step prints a colorized header for a scenario step in the test logs
func (s *BaseSuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// API returns an anonymous client whose requests are logged, bodies included
// when E2E_DEBUG_JSON is set.
func (s *BaseSuite) API() *api.Client {
	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &loggingTransport{t: s.T(), debugJSON: s.Config.DebugJSON, next: http.DefaultTransport},
	}
	return api.NewClient(s.Config.HTTPEndpoint, httpClient, s.Log)
}

// NewUser signs up a throwaway user and returns its credentials.
func (s *BaseSuite) NewUser(ctx context.Context, prefix string) auth.Credentials {
	name := prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	payload, err := s.API().Signup(ctx, domain.SignupInput{
		Username: name,
		Email:    name + "@e2e.local",
		Password: s.Config.Password,
	})
	s.Require().NoError(err, "Signup of %s failed: %s", name, api.ServerMessage(err))
	return auth.NewCredentials(payload)
}

type loggingTransport struct {
	t         *testing.T
	debugJSON bool
	next      http.RoundTripper
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	var body []byte
	if l.debugJSON && req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	resp, err := l.next.RoundTrip(req)

	logBuilder := strings.Builder{}
	status := "ERR"
	if resp != nil {
		status = resp.Status
	}
	fmt.Fprintf(&logBuilder, "GRAPHQL %s [%s] in %v", req.URL.Path, status, time.Since(start))

	if l.debugJSON {
		fmt.Fprintln(&logBuilder, "\nREQUEST:")
		fmt.Fprintln(&logBuilder, string(body))
		if err != nil {
			fmt.Fprintln(&logBuilder, "ERROR:", err)
		} else {
			respBody, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			resp.Body = io.NopCloser(bytes.NewReader(respBody))
			fmt.Fprintln(&logBuilder, "RESPONSE:")
			fmt.Fprintln(&logBuilder, string(respBody))
		}
	}
	l.t.Log(logBuilder.String())
	return resp, err
}
