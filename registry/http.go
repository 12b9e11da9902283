package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/pkg/logger"
)

const (
	httpDefaultTimeout       = 30 * time.Second
	httpWriteRetryAttempts   = 3
	httpWriteRetryDelay      = 500 * time.Millisecond
	requestIDHeader          = "X-Request-ID"
	contentTypeHeader        = "Content-Type"
	applicationJSONMediaType = "application/json"
)

var _ Service = (*HTTPService)(nil)

// HTTPService talks to the hosted configuration service over JSON/HTTP.
// Writes are retried a fixed number of times before their failure propagates.
type HTTPService struct {
	lggr       logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// HTTPOption configures an HTTPService.
type HTTPOption func(*HTTPService)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPService) {
		s.httpClient = client
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) HTTPOption {
	return func(s *HTTPService) {
		s.apiKey = key
	}
}

// NewHTTPService creates a client for the configuration service at baseURL.
func NewHTTPService(lggr logger.Logger, baseURL string, opts ...HTTPOption) (*HTTPService, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("registry base URL is required")
	}

	s := &HTTPService{
		lggr:    lggr,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: httpDefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// configPayload is the wire form of Config.
type configPayload struct {
	FactoryAddress    string          `json:"factoryAddress,omitempty"`
	Network           *chain.Endpoint `json:"network,omitempty"`
	MetadataURL       string          `json:"metadataUrl,omitempty"`
	DeployedAddresses []string        `json:"deployedAddresses,omitempty"`
}

func (s *HTTPService) GetConfig(ctx context.Context, signer common.Address) (*Config, error) {
	reqURL, err := url.JoinPath(s.baseURL, "api", "v1", "config", signer.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to build request URL: %w", err)
	}

	body, err := s.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var payload configPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse registry response: %w", err)
	}

	cfg := &Config{
		Network:     payload.Network,
		MetadataURL: payload.MetadataURL,
	}
	if payload.FactoryAddress != "" {
		if !common.IsHexAddress(payload.FactoryAddress) {
			return nil, fmt.Errorf("registry returned malformed factory address %q", payload.FactoryAddress)
		}
		addr := common.HexToAddress(payload.FactoryAddress)
		cfg.FactoryAddress = &addr
	}
	for _, a := range payload.DeployedAddresses {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("registry returned malformed contract address %q", a)
		}
		cfg.DeployedAddresses = append(cfg.DeployedAddresses, common.HexToAddress(a))
	}

	return cfg, nil
}

func (s *HTTPService) SetFactoryAddress(ctx context.Context, req SetFactoryRequest) error {
	return s.write(ctx, "factory", map[string]any{
		"signerAddress":  req.Signer.Hex(),
		"factoryAddress": req.FactoryAddress.Hex(),
		"familyTag":      req.Family,
		"version":        versionString(req.Version),
	})
}

func (s *HTTPService) SetContractAddress(ctx context.Context, req SetContractRequest) error {
	return s.write(ctx, "contract", map[string]any{
		"signerAddress":   req.Signer.Hex(),
		"contractAddress": req.ContractAddress.Hex(),
		"familyTag":       req.Family,
		"version":         versionString(req.Version),
	})
}

func (s *HTTPService) TransferContractOwner(ctx context.Context, req TransferOwnerRequest) error {
	return s.write(ctx, "contract/owner", map[string]any{
		"signerAddress":   req.Signer.Hex(),
		"contractAddress": req.ContractAddress.Hex(),
		"familyTag":       req.Family,
		"newOwner":        req.NewOwner.Hex(),
	})
}

// write POSTs the payload to the given path, retrying transient failures.
func (s *HTTPService) write(ctx context.Context, path string, payload map[string]any) error {
	reqURL, err := url.JoinPath(s.baseURL, "api", "v1", path)
	if err != nil {
		return fmt.Errorf("failed to build request URL: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	return retry.Do(
		func() error {
			_, err := s.do(ctx, http.MethodPost, reqURL, body)

			return err
		},
		retry.Context(ctx),
		retry.Attempts(httpWriteRetryAttempts),
		retry.Delay(httpWriteRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.lggr.Warnw("registry write failed, retrying", "path", path, "attempt", n+1, "err", err)
		}),
	)
}

func (s *HTTPService) do(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	req.Header.Set("Accept", applicationJSONMediaType)
	if body != nil {
		req.Header.Set(contentTypeHeader, applicationJSONMediaType)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("registry returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func versionString(v *semver.Version) string {
	if v == nil {
		return ""
	}

	return v.String()
}
