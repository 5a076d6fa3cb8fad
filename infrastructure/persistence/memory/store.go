package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"hard-backend/application/ports"
	"hard-backend/domain/core/entities"
	pkgerrors "hard-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Store is an in-process table with the same key layout, object_id index and
// filter semantics as the DynamoDB table. It backs local runs and tests.
type Store struct {
	mu     sync.RWMutex
	rows   map[string]map[string]entities.Item // partition -> sort -> row
	logger *zap.Logger
}

// NewStore creates an empty in-memory table
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		rows:   make(map[string]map[string]entities.Item),
		logger: logger,
	}
}

var _ ports.Store = (*Store)(nil)

// Query returns matching rows ordered by sort key.
func (s *Store) Query(ctx context.Context, q ports.Query) ([]entities.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []entities.Item
	switch q.Index {
	case "":
		for _, row := range s.rows[q.Partition] {
			candidates = append(candidates, row)
		}
	case ports.ItemIndex:
		for _, partition := range s.rows {
			for _, row := range partition {
				if id, ok := row[entities.IDAttribute]; ok && attributeString(id) == q.Partition {
					candidates = append(candidates, row)
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown index %q", q.Index)
	}

	results := make([]entities.Item, 0, len(candidates))
	for _, row := range candidates {
		if matches(row, q.Filter) {
			results = append(results, clone(row))
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return attributeString(results[i][entities.SortAttribute]) < attributeString(results[j][entities.SortAttribute])
	})

	s.logger.Debug("Queried in-memory table",
		zap.String("partition", q.Partition),
		zap.String("index", q.Index),
		zap.Int("count", len(results)),
	)
	return results, nil
}

// Put stores a row, replacing any row with the same keys.
func (s *Store) Put(ctx context.Context, item entities.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	partition, sortKey, err := rowKeys(item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rows[partition] == nil {
		s.rows[partition] = make(map[string]entities.Item)
	}
	s.rows[partition][sortKey] = clone(item)
	return nil
}

// Delete removes the row with the item's keys. Deleting a missing row is not an error.
func (s *Store) Delete(ctx context.Context, item entities.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	partition, sortKey, err := rowKeys(item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows[partition], sortKey)
	if len(s.rows[partition]) == 0 {
		delete(s.rows, partition)
	}
	return nil
}

// BatchGet queries the user's partition for targetType filtered by searchAttribute.
func (s *Store) BatchGet(ctx context.Context, userID string, targetType entities.ObjectType, searchAttribute string, matches []string) ([]entities.Item, error) {
	if !entities.HasAttribute(targetType, searchAttribute) {
		return nil, pkgerrors.NewInvalidUsageError(
			fmt.Sprintf("`%s` is not an attribute of `%s`", searchAttribute, targetType))
	}
	if len(matches) == 0 {
		return []entities.Item{}, nil
	}
	return s.Query(ctx, ports.Query{
		Partition: entities.PartitionKey(userID, targetType),
		Filter:    map[string][]string{searchAttribute: matches},
	})
}

// Len reports the number of stored rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, partition := range s.rows {
		n += len(partition)
	}
	return n
}

func rowKeys(item entities.Item) (string, string, error) {
	partition := attributeString(item[entities.PartitionAttribute])
	sortKey := attributeString(item[entities.SortAttribute])
	if partition == "" || sortKey == "" {
		return "", "", fmt.Errorf("row is missing %s or %s", entities.PartitionAttribute, entities.SortAttribute)
	}
	return partition, sortKey, nil
}

func matches(row entities.Item, filter map[string][]string) bool {
	for name, accepted := range filter {
		av, ok := row[name]
		if !ok {
			return false
		}
		value := attributeString(av)
		found := false
		for _, candidate := range accepted {
			if candidate == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func attributeString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberBOOL:
		return strconv.FormatBool(v.Value)
	default:
		return ""
	}
}

func clone(item entities.Item) entities.Item {
	out := make(entities.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
