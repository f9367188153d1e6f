package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"learnpath-backend/application/ports"
	apperrors "learnpath-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	attrPK         = "PK"
	attrSK         = "SK"
	attrEntityType = "EntityType"

	// Counter item key used for id allocation
	counterPK   = "COUNTER"
	counterSK   = "SEQUENCE"
	counterAttr = "NextID"
)

// Store implements ports.DocumentStore on a DynamoDB single table.
// Records of one kind share a partition (PK = KIND#<kind>) and sort by a
// zero-padded id key, so a kind scan is a single Query. Entity properties
// are stored as top-level attributes under their schema names, which keeps
// the table readable by other consumers of the same record shapes.
type Store struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewStore creates a DynamoDB-backed document store
func NewStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func kindPK(kind string) string {
	return fmt.Sprintf("KIND#%s", kind)
}

// idSK zero-pads the id so lexicographic SK order is numeric id order
func idSK(id int64) string {
	return fmt.Sprintf("ID#%020d", id)
}

func idFromSK(sk string) (int64, error) {
	raw := strings.TrimPrefix(sk, "ID#")
	return strconv.ParseInt(raw, 10, 64)
}

// Put upserts a record, allocating an id from the counter item when the
// given one is zero
func (s *Store) Put(ctx context.Context, kind string, id int64, props ports.Properties) (int64, error) {
	if id == 0 {
		allocated, err := s.nextID(ctx)
		if err != nil {
			return 0, err
		}
		id = allocated
	}

	item, err := attributevalue.MarshalMap(map[string]interface{}(props))
	if err != nil {
		return 0, apperrors.NewDatabaseError("put", err)
	}
	item[attrPK] = &types.AttributeValueMemberS{Value: kindPK(kind)}
	item[attrSK] = &types.AttributeValueMemberS{Value: idSK(id)}
	item[attrEntityType] = &types.AttributeValueMemberS{Value: kind}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		s.logger.Error("Failed to put record",
			zap.String("kind", kind),
			zap.Int64("id", id),
			zap.Error(err),
		)
		return 0, apperrors.NewDatabaseError("put", err)
	}
	return id, nil
}

// Get fetches a record by key
func (s *Store) Get(ctx context.Context, kind string, id int64) (ports.Properties, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			attrPK: &types.AttributeValueMemberS{Value: kindPK(kind)},
			attrSK: &types.AttributeValueMemberS{Value: idSK(id)},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get", err)
	}
	if len(result.Item) == 0 {
		return nil, apperrors.NewNotFoundError(kind)
	}
	return decodeProps(result.Item), nil
}

// Delete removes a record by key; deleting an absent key is a no-op
func (s *Store) Delete(ctx context.Context, kind string, id int64) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			attrPK: &types.AttributeValueMemberS{Value: kindPK(kind)},
			attrSK: &types.AttributeValueMemberS{Value: idSK(id)},
		},
	})
	if err != nil {
		return apperrors.NewDatabaseError("delete", err)
	}
	return nil
}

// Query returns all records of a kind matching every equality filter.
// Filters run server-side as a filter expression; the single-field sort is
// applied client-side, since sort fields are plain attributes, not keys.
// "id" (or no sort field) uses the natural SK order.
func (s *Store) Query(ctx context.Context, q ports.Query) ([]ports.Record, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrPK).Equal(expression.Value(kindPK(q.Kind))))

	if len(q.Filters) > 0 {
		filter := expression.Name(q.Filters[0].Field).Equal(expression.Value(q.Filters[0].Value))
		for _, f := range q.Filters[1:] {
			filter = filter.And(expression.Name(f.Field).Equal(expression.Value(f.Value)))
		}
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", err)
	}

	var records []ports.Record
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("query", err)
		}

		for _, item := range result.Items {
			rec, err := s.decodeRecord(q.Kind, item)
			if err != nil {
				s.logger.Error("Skipping undecodable record",
					zap.String("kind", q.Kind),
					zap.Error(err),
				)
				continue
			}
			records = append(records, rec)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	if q.SortField != "" && q.SortField != "id" {
		field := q.SortField
		sort.SliceStable(records, func(i, j int) bool {
			return propLess(records[i].Props[field], records[j].Props[field])
		})
	}
	return records, nil
}

// nextID atomically increments the shared counter item and returns the new
// value. Ids are database-unique across all kinds.
func (s *Store) nextID(ctx context.Context) (int64, error) {
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			attrPK: &types.AttributeValueMemberS{Value: counterPK},
			attrSK: &types.AttributeValueMemberS{Value: counterSK},
		},
		UpdateExpression: aws.String("ADD #n :one"),
		ExpressionAttributeNames: map[string]string{
			"#n": counterAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError("allocate id", err)
	}

	raw, ok := result.Attributes[counterAttr].(*types.AttributeValueMemberN)
	if !ok {
		return 0, apperrors.NewDatabaseError("allocate id", fmt.Errorf("counter attribute missing"))
	}
	return strconv.ParseInt(raw.Value, 10, 64)
}

func (s *Store) decodeRecord(kind string, item map[string]types.AttributeValue) (ports.Record, error) {
	sk, ok := item[attrSK].(*types.AttributeValueMemberS)
	if !ok {
		return ports.Record{}, fmt.Errorf("record of kind %s has no sort key", kind)
	}
	id, err := idFromSK(sk.Value)
	if err != nil {
		return ports.Record{}, fmt.Errorf("record of kind %s has malformed sort key %q", kind, sk.Value)
	}
	return ports.Record{ID: id, Props: decodeProps(item)}, nil
}

// decodeProps converts DynamoDB attributes back to the property-bag types
// the mapper expects: string, int64, bool. Numbers in this schema are
// always integral. Key and bookkeeping attributes are stripped.
func decodeProps(item map[string]types.AttributeValue) ports.Properties {
	props := make(ports.Properties, len(item))
	for name, av := range item {
		if name == attrPK || name == attrSK || name == attrEntityType {
			continue
		}
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			props[name] = v.Value
		case *types.AttributeValueMemberN:
			if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
				props[name] = n
			} else {
				// Leave non-integral numbers as strings; the mapper will
				// report the type mismatch against the right kind and field.
				props[name] = v.Value
			}
		case *types.AttributeValueMemberBOOL:
			props[name] = v.Value
		}
	}
	return props
}

// propLess orders property values of the types the mapper writes
func propLess(a, b interface{}) bool {
	switch av := a.(type) {
	case int64:
		bv, ok := b.(int64)
		return ok && av < bv
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	default:
		return false
	}
}
