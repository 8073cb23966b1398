// Package qdrant is a minimal REST client to Qdrant implementing
// vectorstore.Store. Collections use cosine distance.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/docmind/internal/vectorstore"
	"github.com/google/uuid"
)

// pointNamespace derives stable UUID point ids from chunk ids; Qdrant only
// accepts unsigned integers or UUIDs.
var pointNamespace = uuid.MustParse("6f1d3c2a-8b7e-4f55-9a0c-2d9e8b1f4a61")

const (
	payloadChunkID  = "chunk_id"
	payloadDocument = "document"
	payloadMeta     = "meta"
)

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Store talks to one Qdrant instance.
type Store struct {
	url    string
	apiKey string
	client *http.Client
}

func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:    strings.TrimRight(cfg.URL, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

// PointID maps a chunk id within a collection to its Qdrant point id.
func PointID(collection, id string) string {
	return uuid.NewSHA1(pointNamespace, []byte(collection+"/"+id)).String()
}

func (s *Store) Create(ctx context.Context, collection string, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("qdrant: invalid dimension %d", dim)
	}
	if err := s.Delete(ctx, collection); err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL(collection), body, nil)
}

func (s *Store) Delete(ctx context.Context, collection string) error {
	err := s.do(ctx, http.MethodDelete, s.collectionURL(collection), nil, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

func (s *Store) Add(ctx context.Context, collection string, ids []string, vectors [][]float64, docs []string, metas []map[string]any) error {
	if err := vectorstore.CheckAdd(ids, vectors, docs, metas); err != nil {
		return err
	}
	points := make([]map[string]any, len(ids))
	for i := range ids {
		points[i] = map[string]any{
			"id":     PointID(collection, ids[i]),
			"vector": vectors[i],
			"payload": map[string]any{
				payloadChunkID:  ids[i],
				payloadDocument: docs[i],
				payloadMeta:     metas[i],
			},
		}
	}
	err := s.do(ctx, http.MethodPut, s.collectionURL(collection)+"/points?wait=true", map[string]any{"points": points}, nil)
	if isNotFound(err) {
		return fmt.Errorf("qdrant: %w: %s", vectorstore.ErrCollectionNotFound, collection)
	}
	return err
}

func (s *Store) Query(ctx context.Context, collection string, vector []float64, k int, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	if f := buildFilter(filter); f != nil {
		req["filter"] = f
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodPost, s.collectionURL(collection)+"/points/search", req, &resp)
	if isNotFound(err) {
		return nil, fmt.Errorf("qdrant: %w: %s", vectorstore.ErrCollectionNotFound, collection)
	}
	if err != nil {
		return nil, err
	}

	matches := make([]vectorstore.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		m := vectorstore.Match{Distance: 1 - r.Score}
		m.ID, _ = r.Payload[payloadChunkID].(string)
		m.Document, _ = r.Payload[payloadDocument].(string)
		m.Metadata, _ = r.Payload[payloadMeta].(map[string]any)
		matches = append(matches, m)
	}
	return matches, nil
}

func buildFilter(f vectorstore.Filter) map[string]any {
	if len(f) == 0 {
		return nil
	}
	must := make([]map[string]any, 0, len(f))
	for k, v := range f {
		must = append(must, map[string]any{
			"key":   payloadMeta + "." + k,
			"match": map[string]any{"value": v},
		})
	}
	return map[string]any{"must": must}
}

func (s *Store) collectionURL(collection string) string {
	return s.url + "/collections/" + url.PathEscape(collection)
}

type statusError struct {
	method string
	url    string
	code   int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: status %d: %s", e.method, e.url, e.code, e.body)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusNotFound
}

func (s *Store) do(ctx context.Context, method, u string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("qdrant: marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("qdrant: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &statusError{method: method, url: u, code: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("qdrant: decode response: %w", err)
		}
	}
	return nil
}
