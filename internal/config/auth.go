package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fstree/crawld/internal/errkind"
)

// envAuthToken is the environment variable carrying the bearer token that
// must be verified against AuthConfig.VerifyURL at startup (spec.md §6.5).
const envAuthToken = "AUTH_TOKEN"

// VerifyAuthToken reads AUTH_TOKEN from the environment and checks it
// against verifyURL: a non-200 response, or a response body that does not
// contain the token, is fatal. An empty verifyURL disables the check
// (local/dev runs without a configured auth gateway).
func VerifyAuthToken(ctx context.Context, verifyURL string, timeout time.Duration) error {
	if verifyURL == "" {
		return nil
	}

	token := os.Getenv(envAuthToken)
	if token == "" {
		return errkind.New(errkind.AuthTokenInvalid, fmt.Errorf("%s is not set", envAuthToken))
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, verifyURL, nil)
	if err != nil {
		return errkind.New(errkind.AuthTokenInvalid, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errkind.New(errkind.AuthTokenInvalid, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errkind.New(errkind.AuthTokenInvalid, err)
	}

	if resp.StatusCode != http.StatusOK {
		return errkind.New(errkind.AuthTokenInvalid, fmt.Errorf("verify endpoint returned %d", resp.StatusCode))
	}
	if !strings.Contains(string(body), token) {
		return errkind.New(errkind.AuthTokenInvalid, fmt.Errorf("verify endpoint did not echo token"))
	}
	return nil
}
