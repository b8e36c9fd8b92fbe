package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/elastic/go-elasticsearch/v8"
)

const mapping = `{
	"mappings": {
		"properties": {
			"name":        {"type": "text"},
			"description": {"type": "text"},
			"price":       {"type": "float"},
			"category":    {"type": "keyword"}
		}
	}
}`

// Index wraps the Elasticsearch client for one full-text product index.
type Index struct {
	es   *elasticsearch.Client
	name string
}

func NewIndex(addresses []string, name string) (*Index, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     addresses,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &Index{es: es, name: name}, nil
}

func (i *Index) Ping(ctx context.Context) error {
	res, err := i.es.Ping(i.es.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}

func (i *Index) Exists(ctx context.Context) (bool, error) {
	res, err := i.es.Indices.Exists([]string{i.name}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, err
	}
	defer func() { _ = res.Body.Close() }()

	return res.StatusCode == 200, nil
}

// Ensure creates the index with its mapping when absent and, if seedPath
// names a readable JSON file of products, bulk-indexes it. A missing seed
// file is not an error.
func (i *Index) Ensure(ctx context.Context, seedPath string) error {
	exists, err := i.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.name, err)
	}
	if exists {
		return nil
	}

	res, err := i.es.Indices.Create(i.name,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.name, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.name, res.Status())
	}

	if seedPath == "" {
		return nil
	}
	return i.seed(ctx, seedPath)
}

type seedProduct struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

func (i *Index) seed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read seed file: %w", err)
	}

	var products []seedProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	var buf bytes.Buffer
	for _, p := range products {
		meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":"%d"}}`, i.name, p.ID)
		doc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal seed product %d: %w", p.ID, err)
		}
		buf.WriteString(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	if buf.Len() == 0 {
		return nil
	}

	res, err := i.es.Bulk(bytes.NewReader(buf.Bytes()),
		i.es.Bulk.WithContext(ctx),
		i.es.Bulk.WithIndex(i.name),
		i.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index seed data: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("bulk index seed data: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy multi_match over name (boosted) and description and
// returns the raw hits envelope.
func (i *Index) Search(ctx context.Context, query string) (json.RawMessage, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.name),
		i.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", i.name, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", i.name, res.Status())
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	var envelope struct {
		Hits json.RawMessage `json:"hits"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return envelope.Hits, nil
}
