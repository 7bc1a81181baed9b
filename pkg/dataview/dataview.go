// Package dataview loads external tabular data consumed for component
// options and table rows, applying cascading filter parameters.
package dataview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-formruntime/pkg/expr"
)

// Source describes where an option list or row set comes from. Inline items
// take precedence over the URL; Params carry filter parameters contributed
// by cascading dependencies.
type Source struct {
	Name   string         `json:"name,omitempty"`
	URL    string         `json:"url,omitempty"`
	Items  []any          `json:"items,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// WithParams returns a copy of the source with filter params merged in.
// Later params win on name collisions; the receiver is not mutated.
func (s Source) WithParams(params map[string]any) Source {
	if len(params) == 0 {
		return s
	}
	merged := make(map[string]any, len(s.Params)+len(params))
	for key, value := range s.Params {
		merged[key] = value
	}
	for key, value := range params {
		merged[key] = value
	}
	s.Params = merged
	return s
}

// Loader resolves a source into its rows. Implementations may hit the
// network; the context bounds that work.
type Loader interface {
	LoadArray(ctx context.Context, src Source) ([]any, error)
}

// LoaderFunc adapts a function into a Loader.
type LoaderFunc func(ctx context.Context, src Source) ([]any, error)

// LoadArray delegates to the underlying function.
func (fn LoaderFunc) LoadArray(ctx context.Context, src Source) ([]any, error) {
	return fn(ctx, src)
}

// StaticLoader serves inline items and ignores URLs. It backs authoring
// previews and tests.
type StaticLoader struct{}

// LoadArray returns the source's inline items.
func (StaticLoader) LoadArray(_ context.Context, src Source) ([]any, error) {
	return src.Items, nil
}

// HTTPLoader fetches JSON arrays over HTTP. Responses may be a bare array
// or an object with an "items" member. Params are sent as query values.
type HTTPLoader struct {
	Client *http.Client
}

// LoadArray performs the fetch.
func (l *HTTPLoader) LoadArray(ctx context.Context, src Source) ([]any, error) {
	if len(src.Items) > 0 {
		return src.Items, nil
	}
	target := strings.TrimSpace(src.URL)
	if target == "" {
		return nil, fmt.Errorf("dataview: source %q has no url and no inline items", src.Name)
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("dataview: bad url %q: %w", target, err)
	}
	if len(src.Params) > 0 {
		query := parsed.Query()
		for key, value := range src.Params {
			query.Set(key, expr.CoerceString(value))
		}
		parsed.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dataview: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataview: fetch %s: %w", parsed.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataview: fetch %s: unexpected status %d", parsed.Host, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dataview: read response: %w", err)
	}
	return decodeRows(payload)
}

func decodeRows(payload []byte) ([]any, error) {
	var rows []any
	if err := json.Unmarshal(payload, &rows); err == nil {
		return rows, nil
	}
	var envelope struct {
		Items []any `json:"items"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("dataview: response is neither an array nor an items envelope: %w", err)
	}
	return envelope.Items, nil
}

// SourceFromAny decodes a raw options payload into a Source. Arrays become
// inline items; maps decode by field name.
func SourceFromAny(raw any) (Source, bool) {
	switch v := raw.(type) {
	case Source:
		return v, true
	case []any:
		return Source{Items: v}, true
	case map[string]any:
		payload, err := json.Marshal(v)
		if err != nil {
			return Source{}, false
		}
		var src Source
		if err := json.Unmarshal(payload, &src); err != nil {
			return Source{}, false
		}
		if src.URL == "" && len(src.Items) == 0 {
			return Source{}, false
		}
		return src, true
	default:
		return Source{}, false
	}
}
