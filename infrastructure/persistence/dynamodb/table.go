package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"hard-backend/application/ports"
	"hard-backend/domain/core/entities"
	pkgerrors "hard-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// maxInOperands is the DynamoDB limit on operands of an IN comparison.
const maxInOperands = 100

// DynamoDBAPI is the part of the DynamoDB client the table uses.
type DynamoDBAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Table implements ports.Store over a single DynamoDB table
type Table struct {
	client    DynamoDBAPI
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewTable creates a new Table. indexName is the physical name of the
// object_id index.
func NewTable(client DynamoDBAPI, tableName, indexName string, logger *zap.Logger) *Table {
	if indexName == "" {
		indexName = ports.ItemIndex
	}
	return &Table{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

var _ ports.Store = (*Table)(nil)

// Query runs a key condition query and drains every page.
func (t *Table) Query(ctx context.Context, q ports.Query) ([]entities.Item, error) {
	for _, values := range q.Filter {
		if len(values) == 0 {
			return []entities.Item{}, nil
		}
	}

	input, err := t.buildQuery(q)
	if err != nil {
		return nil, err
	}

	var items []entities.Item
	paginator := dynamodb.NewQueryPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			t.logStoreError("Query failed", err,
				zap.String("partition", q.Partition),
				zap.String("index", q.Index),
			)
			return nil, fmt.Errorf("failed to query %s: %w", q.Partition, err)
		}
		for _, item := range page.Items {
			items = append(items, entities.Item(item))
		}
	}

	t.logger.Debug("Queried table",
		zap.String("partition", q.Partition),
		zap.String("index", q.Index),
		zap.Int("count", len(items)),
	)
	return items, nil
}

func (t *Table) buildQuery(q ports.Query) (*dynamodb.QueryInput, error) {
	keyAttribute := entities.PartitionAttribute
	var indexName *string
	switch q.Index {
	case "":
	case ports.ItemIndex:
		keyAttribute = entities.IDAttribute
		indexName = aws.String(t.indexName)
	default:
		return nil, fmt.Errorf("unknown index %q", q.Index)
	}

	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(keyAttribute).Equal(expression.Value(q.Partition)))
	if cond, ok := filterCondition(q.Filter); ok {
		builder = builder.WithFilter(cond)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	return &dynamodb.QueryInput{
		TableName:                 aws.String(t.tableName),
		IndexName:                 indexName,
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

// filterCondition ANDs one condition per attribute. Attributes are visited in
// name order so the generated expression is stable.
func filterCondition(filter map[string][]string) (expression.ConditionBuilder, bool) {
	if len(filter) == 0 {
		return expression.ConditionBuilder{}, false
	}

	names := make([]string, 0, len(filter))
	for name := range filter {
		names = append(names, name)
	}
	sort.Strings(names)

	conditions := make([]expression.ConditionBuilder, 0, len(names))
	for _, name := range names {
		values := filter[name]
		if len(values) == 1 {
			conditions = append(conditions, expression.Name(name).Equal(expression.Value(values[0])))
			continue
		}
		rest := make([]expression.OperandBuilder, 0, len(values)-1)
		for _, v := range values[1:] {
			rest = append(rest, expression.Value(v))
		}
		conditions = append(conditions, expression.Name(name).In(expression.Value(values[0]), rest...))
	}

	if len(conditions) == 1 {
		return conditions[0], true
	}
	return expression.And(conditions[0], conditions[1], conditions[2:]...), true
}

// Put writes the row unconditionally.
func (t *Table) Put(ctx context.Context, item entities.Item) error {
	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.tableName),
		Item:      item,
	})
	if err != nil {
		t.logStoreError("PutItem failed", err, zap.Any("key", keyOf(item)))
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// Delete removes the row addressed by the item's partition and sort keys.
func (t *Table) Delete(ctx context.Context, item entities.Item) error {
	key := keyOf(item)
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.tableName),
		Key:       key,
	})
	if err != nil {
		t.logStoreError("DeleteItem failed", err, zap.Any("key", key))
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// BatchGet queries the user's partition for targetType, splitting matches so
// each IN comparison stays within the DynamoDB operand limit.
func (t *Table) BatchGet(ctx context.Context, userID string, targetType entities.ObjectType, searchAttribute string, matches []string) ([]entities.Item, error) {
	if !entities.HasAttribute(targetType, searchAttribute) {
		return nil, pkgerrors.NewInvalidUsageError(
			fmt.Sprintf("`%s` is not an attribute of `%s`", searchAttribute, targetType))
	}

	matches = distinct(matches)
	items := []entities.Item{}
	for i := 0; i < len(matches); i += maxInOperands {
		end := i + maxInOperands
		if end > len(matches) {
			end = len(matches)
		}
		chunk, err := t.Query(ctx, ports.Query{
			Partition: entities.PartitionKey(userID, targetType),
			Filter:    map[string][]string{searchAttribute: matches[i:end]},
		})
		if err != nil {
			return nil, err
		}
		items = append(items, chunk...)
	}
	return items, nil
}

// distinct drops repeated values so a row never matches in two chunks.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func keyOf(item entities.Item) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		entities.PartitionAttribute: item[entities.PartitionAttribute],
		entities.SortAttribute:      item[entities.SortAttribute],
	}
}

func (t *Table) logStoreError(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err), zap.String("table", t.tableName))
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields,
			zap.String("aws_error_code", apiErr.ErrorCode()),
			zap.String("aws_error_message", apiErr.ErrorMessage()),
		)
	}
	t.logger.Error(msg, fields...)
}
