package position

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
)

// HTTPBackend talks to a laneplan positions API (the serve command, or
// anything implementing the same contract).
type HTTPBackend struct {
	baseURL string
	http    *http.Client
}

// NewHTTPBackend creates a Backend for the API rooted at baseURL.
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

var _ Backend = (*HTTPBackend)(nil)

// positionPayload is the wire form of one position record.
type positionPayload struct {
	Container      string  `json:"container"`
	NodeType       string  `json:"nodeType"`
	NodeID         string  `json:"nodeId"`
	RelY           float64 `json:"relY"`
	IsDuplicate    bool    `json:"isDuplicate"`
	DuplicateKey   string  `json:"duplicateKey,omitempty"`
	OriginalNodeID *int64  `json:"originalNodeId,omitempty"`
}

func toPayload(p *domain.Position) positionPayload {
	return positionPayload{
		Container:      p.ContainerID,
		NodeType:       string(p.NodeType),
		NodeID:         p.NodeID,
		RelY:           p.RelY,
		IsDuplicate:    p.IsDuplicate,
		DuplicateKey:   p.DuplicateKey,
		OriginalNodeID: p.OriginalNodeID,
	}
}

func fromPayload(w positionPayload) *domain.Position {
	return &domain.Position{
		ContainerID:    w.Container,
		NodeType:       domain.NodeType(w.NodeType),
		NodeID:         w.NodeID,
		RelY:           w.RelY,
		IsDuplicate:    w.IsDuplicate,
		DuplicateKey:   w.DuplicateKey,
		OriginalNodeID: w.OriginalNodeID,
	}
}

func (b *HTTPBackend) Fetch(ctx context.Context, containerID string, nodeType domain.NodeType) ([]*domain.Position, error) {
	endpoint := fmt.Sprintf("%s/positions?container=%s&nodeType=%s",
		b.baseURL, url.QueryEscape(containerID), url.QueryEscape(string(nodeType)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building fetch request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching positions: unexpected status %d", resp.StatusCode)
	}

	var payload []positionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding positions: %w", err)
	}

	records := make([]*domain.Position, 0, len(payload))
	for _, w := range payload {
		records = append(records, fromPayload(w))
	}
	return records, nil
}

func (b *HTTPBackend) Upsert(ctx context.Context, p *domain.Position) error {
	body, err := json.Marshal(toPayload(p))
	if err != nil {
		return fmt.Errorf("encoding position: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/positions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("upserting position: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("upserting position: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (b *HTTPBackend) Reset(ctx context.Context, containerID string) error {
	endpoint := fmt.Sprintf("%s/positions?container=%s", b.baseURL, url.QueryEscape(containerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building reset request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("resetting positions: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("resetting positions: unexpected status %d", resp.StatusCode)
	}
	return nil
}
