package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"

	"pantun-api/cache"
	"pantun-api/logger"
	"pantun-api/models"
)

// PantunStore is the record store contract; *repository.PantunRepo implements it.
type PantunStore interface {
	ListAll(ctx context.Context) ([]models.PantunPost, error)
	GetByID(ctx context.Context, id int) ([]models.PantunPost, error)
	GetBySampiranEnding(ctx context.Context, count, ending string) ([]models.PantunPost, error)
	Create(ctx context.Context, req models.CreatePantunReq) (*models.PantunPost, error)
	Update(ctx context.Context, req models.UpdatePantunReq) ([]models.PantunPost, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// Cache backs getById lookups. Implemented by *cache.RedisCache.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, val any) error
	Del(ctx context.Context, key string) error
}

// Index mirrors records into a full-text index. Implemented by *search.ES.
type Index interface {
	IndexPantun(ctx context.Context, p models.PantunPost) error
	DeletePantun(ctx context.Context, id int) error
	SearchPantun(ctx context.Context, q string) ([]models.PantunPost, error)
}

type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

// Procedure describes one named operation.
type Procedure struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"type"`
	Input string `json:"input"`

	call func(ctx context.Context, input []byte) (any, error)
}

type noInput struct{}

var errMissingInput = errors.New("input is required")

func procedure[In any](name string, kind Kind, input string, h func(context.Context, In) (any, error)) Procedure {
	return Procedure{
		Name:  name,
		Kind:  kind,
		Input: input,
		call: func(ctx context.Context, raw []byte) (any, error) {
			var in In
			if err := decodeInput(raw, &in); err != nil {
				return nil, BadRequest("invalid input: %s", err.Error())
			}
			return h(ctx, in)
		},
	}
}

// decodeInput unmarshals and validates raw against the binding tags of dst.
// A JSON null counts as missing input.
func decodeInput[In any](raw []byte, dst *In) error {
	if _, ok := any(*dst).(noInput); ok {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errMissingInput
	}
	return binding.JSON.BindBody(raw, dst)
}

// Service holds the dependencies of the pantun procedures. Cache and Index
// are optional.
type Service struct {
	Store PantunStore
	Cache Cache
	Index Index
}

// Procedures returns the static procedure table.
func (s *Service) Procedures() []Procedure {
	return []Procedure{
		procedure("getAll", KindQuery, "none", s.getAll),
		procedure("getById", KindQuery, "integer id", s.getByID),
		procedure("getSampiranByEnding", KindQuery, `{ jumlahSampiran: "1" | "2", ending: string }`, s.getSampiranByEnding),
		procedure("search", KindQuery, "{ q: string }", s.search),
		procedure("create", KindMutation, "{ sampiran_1: string, sampiran_2?: string, content_1: string, content_2?: string }", s.create),
		procedure("update", KindMutation, "{ id: integer, sampiran_1: string, sampiran_2?: string, content_1: string, content_2?: string }", s.update),
		procedure("delete", KindMutation, "integer id", s.delete),
	}
}

func (s *Service) getAll(ctx context.Context, _ noInput) (any, error) {
	return s.Store.ListAll(ctx)
}

func (s *Service) getByID(ctx context.Context, id int) (any, error) {
	key := cache.PantunKey(id)
	if s.Cache != nil {
		var cached []models.PantunPost
		err := s.Cache.GetJSON(ctx, key, &cached)
		if err == nil && len(cached) > 0 {
			return cached, nil
		}
		if err != nil && !errors.Is(err, cache.ErrMiss) {
			logger.WithContext(ctx).Warn("cache read failed", "key", key, "error", err)
		}
	}

	posts, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, NotFound("Pantun with id %d not found", id)
	}

	if s.Cache != nil {
		if err := s.Cache.SetJSON(ctx, key, posts); err != nil {
			logger.WithContext(ctx).Warn("cache write failed", "key", key, "error", err)
		}
	}
	return posts, nil
}

func (s *Service) getSampiranByEnding(ctx context.Context, in models.SampiranEndingReq) (any, error) {
	switch in.JumlahSampiran {
	case "1", "2":
	default:
		return nil, BadRequest("jumlahSampiran must be \"1\" or \"2\", got %q", in.JumlahSampiran)
	}

	posts, err := s.Store.GetBySampiranEnding(ctx, in.JumlahSampiran, *in.Ending)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, NotFound("No pantun with %s sampiran ending in %q", in.JumlahSampiran, *in.Ending)
	}
	return posts, nil
}

func (s *Service) search(ctx context.Context, in models.SearchReq) (any, error) {
	if s.Index == nil {
		return nil, &Error{Code: CodePreconditionFailed, Message: "search index is not configured"}
	}
	posts, err := s.Index.SearchPantun(ctx, in.Q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return posts, nil
}

func (s *Service) create(ctx context.Context, in models.CreatePantunReq) (any, error) {
	post, err := s.Store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, *post)
	return post, nil
}

func (s *Service) update(ctx context.Context, in models.UpdatePantunReq) (any, error) {
	posts, err := s.Store.Update(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, NotFound("Pantun with id %d not found", *in.ID)
	}

	s.invalidate(ctx, *in.ID)
	for _, p := range posts {
		s.reindex(ctx, p)
	}
	return posts, nil
}

func (s *Service) delete(ctx context.Context, id int) (any, error) {
	deleted, err := s.Store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return models.DeleteResult{Success: false, Text: fmt.Sprintf("Pantun with id %d does not exist", id)}, nil
	}

	s.invalidate(ctx, id)
	if s.Index != nil {
		if err := s.Index.DeletePantun(ctx, id); err != nil {
			logger.WithContext(ctx).Warn("index delete failed", "id", id, "error", err)
		}
	}
	return models.DeleteResult{Success: true, Text: fmt.Sprintf("Pantun with id %d has been deleted", id)}, nil
}

func (s *Service) invalidate(ctx context.Context, id int) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, cache.PantunKey(id)); err != nil {
		logger.WithContext(ctx).Warn("cache invalidation failed", "id", id, "error", err)
	}
}

func (s *Service) reindex(ctx context.Context, p models.PantunPost) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexPantun(ctx, p); err != nil {
		logger.WithContext(ctx).Warn("index write failed", "id", p.ID, "error", err)
	}
}
