package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yoockh/videoinsight/internal/utils"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"
	requestTimeout = 5 * time.Minute

	// Fixed wait policy for remote file processing: 30 polls, 2s apart.
	pollInterval    = 2 * time.Second
	maxPollAttempts = 30
)

// Client talks to the Gemini Developer API over plain HTTP. It is safe for
// concurrent use and is constructed once at wiring time.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	gen     *GenerationConfig
	httpc   *http.Client

	pollEvery time.Duration
}

type Options struct {
	// APIKey may be empty; every call then fails with an initialization
	// error, which is how AI endpoints are disabled without credentials.
	APIKey  string
	BaseURL string
	Model   string
	// Generation is attached verbatim to every generateContent request.
	Generation   *GenerationConfig
	HTTPClient   *http.Client
	PollInterval time.Duration
}

func New(opts Options) *Client {
	c := &Client{
		apiKey:    opts.APIKey,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		model:     opts.Model,
		gen:       opts.Generation,
		httpc:     opts.HTTPClient,
		pollEvery: opts.PollInterval,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: requestTimeout}
	}
	if c.pollEvery <= 0 {
		c.pollEvery = pollInterval
	}
	return c
}

func (c *Client) ensureKey(op string) error {
	if strings.TrimSpace(c.apiKey) == "" {
		return utils.E(utils.CodeProvider, op, "gemini client is not initialized: GEMINI_API_KEY is not set", nil)
	}
	return nil
}

// doJSON issues the request and decodes a 2xx JSON body into out.
func (c *Client) doJSON(req *http.Request, op string, out any) error {
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return utils.E(utils.CodeProvider, op, "gemini request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeAPIError(resp, op)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return utils.E(utils.CodeProvider, op, "failed to decode gemini response", err)
	}
	return nil
}

func (c *Client) decodeAPIError(resp *http.Response, op string) error {
	var apiErr struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return utils.E(utils.CodeProvider, op,
			fmt.Sprintf("gemini api error: status %d %s: %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message), nil)
	}
	return utils.E(utils.CodeProvider, op,
		fmt.Sprintf("gemini api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
}

func encodeJSON(v any) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}
