package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	es8 "github.com/elastic/go-elasticsearch/v8"

	"pantun-api/models"
)

type ES struct {
	Client *es8.Client
	Index  string
}

func New(esURL, index string) (*ES, error) {
	es, err := es8.NewClient(es8.Config{Addresses: []string{esURL}, Transport: &http.Transport{}})
	if err != nil {
		return nil, err
	}
	return &ES{Client: es, Index: index}, nil
}

// EnsureIndex creates the index with a text mapping. An existing index
// answers 400, which is ignored.
func (e *ES) EnsureIndex(ctx context.Context) error {
	mapping := `{
	  "mappings": {
	    "properties": {
	      "sampiran_1": {"type":"text"},
	      "sampiran_2": {"type":"text"},
	      "content_1":  {"type":"text"},
	      "content_2":  {"type":"text"}
	    }
	  }
	}`
	res, err := e.Client.Indices.Create(e.Index,
		e.Client.Indices.Create.WithContext(ctx),
		e.Client.Indices.Create.WithBody(bytes.NewBufferString(mapping)))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("create index %s: %s", e.Index, res.Status())
	}
	return nil
}

func (e *ES) IndexPantun(ctx context.Context, p models.PantunPost) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	res, err := e.Client.Index(e.Index, bytes.NewReader(b),
		e.Client.Index.WithContext(ctx),
		e.Client.Index.WithDocumentID(strconv.Itoa(p.ID)))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	if res.IsError() {
		return fmt.Errorf("index pantun %d: %s", p.ID, res.Status())
	}
	return nil
}

// DeletePantun removes the document; a missing document is not an error.
func (e *ES) DeletePantun(ctx context.Context, id int) error {
	res, err := e.Client.Delete(e.Index, strconv.Itoa(id), e.Client.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete pantun %d: %s", id, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.PantunPost `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *ES) SearchPantun(ctx context.Context, q string) ([]models.PantunPost, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"sampiran_1", "sampiran_2", "content_1", "content_2"},
			},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(e.Index),
		e.Client.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search pantun: %s", res.Status())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	out := make([]models.PantunPost, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
