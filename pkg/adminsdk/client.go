package adminsdk

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// BootstrapTokenHeader carries the one-time bootstrap secret.
const BootstrapTokenHeader = "X-Bootstrap-Token"

// Client talks to the super admin API. It is safe for concurrent use but
// holds a single session: create one Client per operator.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client with its own cookie jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}
