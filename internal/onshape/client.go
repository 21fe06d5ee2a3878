package onshape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrRequest marks a non-success response from any service boundary.
var ErrRequest = errors.New("request error")

// Client provides access to the CAD translation service.
type Client struct {
	baseURL    string
	accessKey  string
	secretKey  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a translation service client.
func New(baseURL, accessKey, secretKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("onshape base url required")
	}
	if strings.TrimSpace(accessKey) == "" || strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("onshape access and secret keys required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accessKey:  strings.TrimSpace(accessKey),
		secretKey:  strings.TrimSpace(secretKey),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Elements lists the selectable elements of a document workspace, in the
// order the service reports them.
func (c *Client) Elements(ctx context.Context, documentID, workspaceID string) ([]Element, error) {
	url := fmt.Sprintf("%s/documents/d/%s/w/%s/elements", c.baseURL, documentID, workspaceID)
	var elements []Element
	if err := c.getJSON(ctx, url, &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

// Parts lists the solids of a part studio element.
func (c *Client) Parts(ctx context.Context, documentID, workspaceID, elementID string) ([]Part, error) {
	url := fmt.Sprintf("%s/parts/d/%s/w/%s/e/%s", c.baseURL, documentID, workspaceID, elementID)
	var parts []Part
	if err := c.getJSON(ctx, url, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// StartTranslation initiates a glTF translation job for the requested element
// or part and returns the job identifier.
func (c *Client) StartTranslation(ctx context.Context, req TranslationRequest) (*Translation, error) {
	if strings.TrimSpace(req.ElementID) == "" {
		return nil, fmt.Errorf("%w: element id required", ErrRequest)
	}

	body := map[string]any{
		"resolution":              translationResolution,
		"distanceTolerance":       distanceTolerance,
		"angularTolerance":        angularTolerance,
		"maximumChordLength":      maximumChordLength,
		"linkDocumentWorkspaceId": req.WorkspaceID,
		"workspaceId":             req.WorkspaceID,
		"documentId":              req.DocumentID,
		"includeExportIds":        false,
		"formatName":              translationFormat,
		"flattenAssemblies":       false,
		"yAxisIsUp":               false,
		"triggerAutoDownload":     false,
		"storeInDocument":         false,
		"grouping":                true,
		"configuration":           translationConfiguration,
	}

	var url string
	if req.PartID != "" {
		url = fmt.Sprintf("%s/partstudios/d/%s/w/%s/e/%s/translations", c.baseURL, req.DocumentID, req.WorkspaceID, req.ElementID)
		body["partIds"] = req.PartID
	} else {
		url = fmt.Sprintf("%s/assemblies/d/%s/w/%s/e/%s/translations", c.baseURL, req.DocumentID, req.WorkspaceID, req.ElementID)
		body["elementId"] = req.ElementID
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode translation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: start translation returned %d", ErrRequest, resp.StatusCode)
	}

	var translation Translation
	if err := json.NewDecoder(resp.Body).Decode(&translation); err != nil {
		return nil, fmt.Errorf("decode translation response: %w", err)
	}
	if translation.ID == "" {
		return nil, fmt.Errorf("%w: translation response missing id", ErrRequest)
	}
	return &translation, nil
}

// TranslationStatus observes a translation job once. An in-progress job is
// pending; a failed job yields a terminal body with an error field; a
// completed job yields the raw model payload downloaded from the service's
// external data store.
func (c *Client) TranslationStatus(ctx context.Context, translationID string) (JobStatus, error) {
	url := fmt.Sprintf("%s/translations/%s", c.baseURL, translationID)
	var record translationRecord
	if err := c.getJSON(ctx, url, &record); err != nil {
		return JobStatus{}, err
	}

	switch record.RequestState {
	case "DONE":
	case "FAILED":
		terminal, err := json.Marshal(map[string]string{"error": record.FailureReason})
		if err != nil {
			return JobStatus{}, fmt.Errorf("encode failure body: %w", err)
		}
		return JobStatus{Body: terminal}, nil
	default:
		// ACTIVE and any other non-terminal state.
		return JobStatus{Pending: true}, nil
	}

	if record.DocumentID == "" || len(record.ResultExternalDataIDs) == 0 {
		terminal, err := json.Marshal(map[string]string{"error": "missing translation result info"})
		if err != nil {
			return JobStatus{}, fmt.Errorf("encode failure body: %w", err)
		}
		return JobStatus{Body: terminal}, nil
	}

	payload, err := c.download(ctx, record.DocumentID, record.ResultExternalDataIDs[0])
	if err != nil {
		return JobStatus{}, err
	}
	return JobStatus{Body: payload}, nil
}

func (c *Client) download(ctx context.Context, documentID, externalDataID string) ([]byte, error) {
	url := fmt.Sprintf("%s/documents/d/%s/externaldata/%s", c.baseURL, documentID, externalDataID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: external data returned %d", ErrRequest, resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read external data: %w", err)
	}
	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrRequest, req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.SetBasicAuth(c.accessKey, c.secretKey)
}
