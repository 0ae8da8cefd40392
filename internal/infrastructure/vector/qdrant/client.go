// Package qdrant implements the vector and keyword search ports over the
// Qdrant HTTP API. Dense search runs against the collection's default vector;
// lexical search runs against a named sparse vector written by the ingestion
// pipeline with the same hashed-term encoding used here for queries.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/grantpilot/ragengine/internal/core/domain"
)

const sparseVectorName = "lexical"

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Search performs dense nearest-neighbor lookup. Scores are cosine
// similarities clamped to [0,1].
func (c *Client) Search(
	ctx context.Context,
	queryVector []float32,
	topK int,
	filter domain.SearchFilter,
) ([]domain.ScoredChunk, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        topK,
		"with_payload": true,
		"with_vector":  true,
	}
	if qf := buildFilter(filter); qf != nil {
		reqBody["filter"] = qf
	}

	points, err := c.queryPoints(ctx, "/points/search", reqBody, "search")
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScoredChunk, 0, len(points))
	for _, p := range points {
		chunk := chunkFromPayload(p.ID, p.Payload)
		chunk.Embedding = p.Vector
		out = append(out, domain.ScoredChunk{
			Chunk: chunk,
			Score: domain.ClampScore(p.Score),
		})
	}
	return out, nil
}

// SearchLexical performs sparse (BM25-style) lookup using the hashed-term
// query encoding. Sparse scores are unbounded dot products, so they are
// normalized against the best hit of the response.
func (c *Client) SearchLexical(
	ctx context.Context,
	queryText string,
	topK int,
	filter domain.SearchFilter,
) ([]domain.ScoredChunk, error) {
	sparse := encodeSparseQuery(queryText)
	if len(sparse.Indices) == 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"query": map[string]any{
			"indices": sparse.Indices,
			"values":  sparse.Values,
		},
		"using":        sparseVectorName,
		"limit":        topK,
		"with_payload": true,
	}
	if qf := buildFilter(filter); qf != nil {
		reqBody["filter"] = qf
	}

	points, err := c.queryPoints(ctx, "/points/query", reqBody, "lexical search")
	if err != nil {
		return nil, err
	}

	var maxScore float64
	for _, p := range points {
		if p.Score > maxScore {
			maxScore = p.Score
		}
	}

	out := make([]domain.ScoredChunk, 0, len(points))
	for _, p := range points {
		score := 0.0
		if maxScore > 0 {
			score = p.Score / maxScore
		}
		out = append(out, domain.ScoredChunk{
			Chunk: chunkFromPayload(p.ID, p.Payload),
			Score: domain.ClampScore(score),
		})
	}
	return out, nil
}

// LexicalAdapter exposes SearchLexical under the keyword search port.
type LexicalAdapter struct {
	client *Client
}

func NewLexicalAdapter(client *Client) *LexicalAdapter {
	return &LexicalAdapter{client: client}
}

func (a *LexicalAdapter) Search(
	ctx context.Context,
	queryText string,
	topK int,
	filter domain.SearchFilter,
) ([]domain.ScoredChunk, error) {
	return a.client.SearchLexical(ctx, queryText, topK, filter)
}

type scoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
	Vector  []float32
}

func (c *Client) queryPoints(ctx context.Context, path string, reqBody map[string]any, operation string) ([]scoredPoint, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", operation, err)
	}

	url := fmt.Sprintf("%s/collections/%s%s", c.baseURL, c.collection, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(respBody)); msg != "" {
			return nil, fmt.Errorf("qdrant %s status: %s: %s", operation, resp.Status, msg)
		}
		return nil, fmt.Errorf("qdrant %s status: %s", operation, resp.Status)
	}

	return decodePoints(resp.Body, operation)
}

// decodePoints handles both response shapes: /points/search returns a bare
// array in "result", /points/query nests it under "result.points".
func decodePoints(r io.Reader, operation string) ([]scoredPoint, error) {
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}

	type rawPoint struct {
		ID      any             `json:"id"`
		Score   float64         `json:"score"`
		Payload map[string]any  `json:"payload"`
		Vector  json.RawMessage `json:"vector"`
	}

	var flat []rawPoint
	if err := json.Unmarshal(envelope.Result, &flat); err != nil {
		var nested struct {
			Points []rawPoint `json:"points"`
		}
		if err := json.Unmarshal(envelope.Result, &nested); err != nil {
			return nil, fmt.Errorf("decode %s result: %w", operation, err)
		}
		flat = nested.Points
	}

	out := make([]scoredPoint, 0, len(flat))
	for _, p := range flat {
		out = append(out, scoredPoint{
			ID:      fmt.Sprintf("%v", p.ID),
			Score:   p.Score,
			Payload: p.Payload,
			Vector:  decodeDenseVector(p.Vector),
		})
	}
	return out, nil
}

// decodeDenseVector handles both vector shapes: a plain array for collections
// with a single unnamed vector, or a name->array map otherwise. Sparse named
// vectors fail both decodes and yield nil.
func decodeDenseVector(raw json.RawMessage) []float32 {
	if len(raw) == 0 {
		return nil
	}
	var flat []float32
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat
	}
	var named map[string]json.RawMessage
	if err := json.Unmarshal(raw, &named); err != nil {
		return nil
	}
	for name, entry := range named {
		if name == sparseVectorName {
			continue
		}
		if err := json.Unmarshal(entry, &flat); err == nil && len(flat) > 0 {
			return flat
		}
	}
	return nil
}

func chunkFromPayload(id string, payload map[string]any) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Text:      getStringPayload(payload, "text"),
		Embedding: nil,
		Metadata: domain.ChunkMetadata{
			DocumentID:   getStringPayload(payload, "doc_id"),
			Filename:     getStringPayload(payload, "filename"),
			DocumentType: getStringPayload(payload, "document_type"),
			Year:         getIntPayload(payload, "year"),
			Programs:     getStringSlicePayload(payload, "programs"),
			Tags:         getStringSlicePayload(payload, "tags"),
			Outcome:      getStringPayload(payload, "outcome"),
		},
	}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

func getStringSlicePayload(payload map[string]any, key string) []string {
	raw, ok := payload[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
