package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/handiism/drawing-downloader/internal/model"
	"github.com/handiism/drawing-downloader/internal/plm"
)

const userAgent = "drawing-downloader"

// Client talks to the repository gateway over HTTP/JSON.
//
// Client implements plm.Repository and plm.FileStore; one Client backs one
// authenticated session and must not be shared across concurrent pipelines.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a Client for the gateway at baseURL, authenticating
// with the given bearer token. timeout bounds each individual request.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
	}
}

// ApplyPolicy implements plm.Repository.
func (c *Client) ApplyPolicy(ctx context.Context, policy plm.PropertyPolicy) error {
	return c.postJSON(ctx, "/v1/session/policy", policy, nil)
}

// GetItemAndRelated implements plm.Repository: the combined
// item+revision+related retrieval in one round trip.
func (c *Client) GetItemAndRelated(ctx context.Context, q plm.ItemQuery) (*plm.CombinedResult, error) {
	req := combinedRequest{
		ItemID:       q.Identifier,
		RevisionRule: q.RevisionRule,
	}
	var resp combinedResponse
	if err := c.postJSON(ctx, "/v1/items/combined", req, &resp); err != nil {
		return nil, err
	}
	if resp.Item == nil {
		return nil, plm.ErrNotFound
	}

	result := &plm.CombinedResult{
		Item:             resp.Item.toModel(),
		RelatedTraversed: resp.RelatedTraversed,
	}
	if resp.Revision != nil {
		result.Revision = resp.Revision.toModel()
	}
	for _, ds := range resp.Datasets {
		result.Datasets = append(result.Datasets, ds.toModel())
	}
	return result, nil
}

// FindItem implements plm.Repository: attribute-based item lookup returning
// the item and its latest revision as ordered by the server.
func (c *Client) FindItem(ctx context.Context, identifier string) (*model.Item, *model.Revision, error) {
	var resp itemResponse
	path := "/v1/items?" + url.Values{"item_id": {identifier}, "nrevs": {"1"}}.Encode()
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, nil, err
	}
	if resp.Item == nil {
		return nil, nil, plm.ErrNotFound
	}

	item := resp.Item.toModel()
	if resp.Revision == nil {
		return item, nil, nil
	}
	return item, resp.Revision.toModel(), nil
}

// Related implements plm.Repository: named-relation traversal.
func (c *Client) Related(ctx context.Context, uid, relation string) ([]model.Object, error) {
	path := fmt.Sprintf("/v1/objects/%s/related?%s", url.PathEscape(uid),
		url.Values{"relation": {relation}}.Encode())

	var resp relatedResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	objects := make([]model.Object, 0, len(resp.Objects))
	for _, o := range resp.Objects {
		objects = append(objects, model.Object{UID: o.UID, Type: o.Type, Name: o.Name})
	}
	return objects, nil
}

// Datasets implements plm.Repository: dataset materialization by uid.
func (c *Client) Datasets(ctx context.Context, uids []string) ([]model.Dataset, error) {
	var resp datasetsResponse
	if err := c.postJSON(ctx, "/v1/datasets/batch", datasetsRequest{UIDs: uids}, &resp); err != nil {
		return nil, err
	}

	datasets := make([]model.Dataset, 0, len(resp.Datasets))
	for _, ds := range resp.Datasets {
		datasets = append(datasets, ds.toModel())
	}
	return datasets, nil
}

// CachedPath implements plm.FileStore: local file-management cache lookup.
func (c *Client) CachedPath(ctx context.Context, file model.FileRef) (string, error) {
	var resp cacheResponse
	path := fmt.Sprintf("/v1/files/%s/cache", url.PathEscape(file.UID))
	err := c.getJSON(ctx, path, &resp)
	if err != nil {
		return "", err
	}
	if !resp.Cached {
		return "", plm.ErrCacheMiss
	}
	return resp.Path, nil
}

// ReadTicket implements plm.FileStore: read-ticket issuance.
func (c *Client) ReadTicket(ctx context.Context, file model.FileRef) (plm.Ticket, error) {
	var resp ticketResponse
	path := fmt.Sprintf("/v1/files/%s/ticket", url.PathEscape(file.UID))
	if err := c.postJSON(ctx, path, nil, &resp); err != nil {
		return "", err
	}
	if resp.Ticket == "" {
		return "", fmt.Errorf("gateway issued no ticket for %s", file.Name)
	}
	return plm.Ticket(resp.Ticket), nil
}

// Open implements plm.FileStore: ticketed file streaming. The returned
// reader is the response body; the caller owns closing it.
func (c *Client) Open(ctx context.Context, ticket plm.Ticket) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/files/stream?"+url.Values{"ticket": {string(ticket)}}.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return plm.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
