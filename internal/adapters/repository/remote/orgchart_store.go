package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ogurasousui/orgchart/internal/core/orgchart"
)

const employeesPath = "/api/employees"

// maxBody は読み込むレスポンスボディの上限です。
const maxBody = 8 << 20

// OrgChartStore は別インスタンスの HTTP API を永続化境界として使うストアです。
type OrgChartStore struct {
	client   *http.Client
	endpoint string
}

// NewOrgChartStore は baseURL の /api/employees を読み書きするストアを生成します。
// client が nil の場合は timeout を持つクライアントを用意します。
func NewOrgChartStore(baseURL string, client *http.Client, timeout time.Duration) (*OrgChartStore, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", u.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &OrgChartStore{client: client, endpoint: u.String() + employeesPath}, nil
}

func (s *OrgChartStore) Load(ctx context.Context) (orgchart.Forest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, &orgchart.LoadError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	body, err := s.do(req)
	if err != nil {
		return nil, &orgchart.LoadError{Err: err}
	}

	forest, err := orgchart.DecodeDocument(body)
	if err != nil {
		return nil, &orgchart.LoadError{Err: err}
	}
	return forest, nil
}

func (s *OrgChartStore) Save(ctx context.Context, forest orgchart.Forest) error {
	b, err := orgchart.EncodeDocument(forest)
	if err != nil {
		return &orgchart.SaveError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.endpoint, bytes.NewReader(b))
	if err != nil {
		return &orgchart.SaveError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := s.do(req); err != nil {
		return &orgchart.SaveError{Err: err}
	}
	return nil
}

func (s *OrgChartStore) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("remote: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote: %s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}
