package admin_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for godview end-to-end tests.
 * This includes container setup, account operations, and assertions.
 */

const (
	testImageName = "godview-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	rootEmail      = "root@godview.test"
	rootName       = "Root"
	rootPassword   = "correct horse battery"
	mainAppURL     = "https://app.godview.test"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete. Set GODVIEW_E2E=1 to run the suite, it needs Docker.
func TestMain(m *testing.M) {
	if os.Getenv("GODVIEW_E2E") == "" {
		fmt.Fprintln(os.Stdout, "GODVIEW_E2E not set, skipping end-to-end tests")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building godview Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up godview Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/godview/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

func baseEnv() map[string]string {
	return map[string]string{
		"BOOTSTRAP_TOKEN": bootstrapToken,
		"MAIN_APP_URL":    mainAppURL,
		"ENV":             "test",
		"LOG_LEVEL":       "info",
		"LOG_FORMAT":      "json",
	}
}

// setupContainer starts godview with relaxed rate limits and returns the base URL.
func setupContainer(t *testing.T) (string, func()) {
	t.Helper()

	env := baseEnv()
	// Tests make many rapid requests which would otherwise hit the strict limits
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_WINDOW_SEC"] = "60"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"

	return startContainer(t, env)
}

// setupContainerWithDefaultRateLimits keeps production limits, for rate limit tests only.
func setupContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

func newClient(t *testing.T, baseURL string) *adminsdk.Client {
	t.Helper()
	client, err := adminsdk.NewClient(baseURL)
	require.NoError(t, err)
	return client
}

// bootstrapRoot creates the first super admin and returns a signed in client.
func bootstrapRoot(t *testing.T, baseURL string) *adminsdk.Client {
	t.Helper()

	client := newClient(t, baseURL)
	root, err := client.Bootstrap(t.Context(), bootstrapToken, adminsdk.BootstrapRequest{
		Email:    rootEmail,
		Name:     rootName,
		Password: rootPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.Equal(t, "SUPER_ADMIN", root.Role)

	signIn(t, client, rootEmail, rootPassword)
	return client
}

func signIn(t *testing.T, client *adminsdk.Client, email, password string) *adminsdk.SessionResponse {
	t.Helper()
	session, err := client.SignIn(t.Context(), adminsdk.SignInRequest{Email: email, Password: password})
	require.NoError(t, err, "Sign in should succeed")
	return session
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *adminsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertCode verifies err is an API error carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, adminsdk.HasCode(err, code), "expected %s, got: %v", code, err)
}
