package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/ruleflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "ruleflow:workflow:"

// Sub-namespaces under the prefix. Workflow ids only ever land under dataSpace,
// so no id can collide with the index or with lock keys (<prefix>lock:).
const (
	dataSpace = "wf:"
	indexName = "index"
)

// Store implements ports.WorkflowStore using Redis.
// Each workflow is a JSON string under <prefix>wf:<id>; <prefix>index is a ZSET of ids.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for workflows.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying connection, e.g. to build a Locker sharing it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + dataSpace + id
}

func (s *Store) indexKey() string {
	return s.prefix + indexName
}

// Save persists the workflow and registers it in the index.
func (s *Store) Save(ctx context.Context, wf *domain.Workflow) error {
	if wf.ID == "" {
		return fmt.Errorf("workflow id cannot be empty")
	}

	data, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(wf.ID), data, 0)
	// Equal scores keep the index in lexical order.
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: 0, Member: wf.ID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load retrieves the workflow from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workflow, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load from redis: %w", err)
	}

	var wf domain.Workflow
	if err := json.Unmarshal([]byte(val), &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}

	return &wf, nil
}

// Delete removes the workflow and its index entry. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

// List returns all indexed workflow IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	sort.Strings(ids)

	return ids, nil
}
