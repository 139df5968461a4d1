package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"stratgraph/application/ports"
	"stratgraph/domain/core/entities"
	apperrors "stratgraph/pkg/errors"
)

// QueryRepository implements ports.QueryRepository on the shared table.
// Query records are keyed by their own id so status polling needs no user
// context; a GSI entry under the user enables per-user listing.
type QueryRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewQueryRepository creates a new QueryRepository
func NewQueryRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.QueryRepository {
	return &QueryRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// queryItem represents the DynamoDB item structure for a query record
type queryItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	GSI1PK        string `dynamodbav:"GSI1PK"`
	GSI1SK        string `dynamodbav:"GSI1SK"`
	EntityType    string `dynamodbav:"EntityType"`
	QueryID       string `dynamodbav:"QueryID"`
	UserID        string `dynamodbav:"UserID"`
	QueryText     string `dynamodbav:"QueryText"`
	ContextParams string `dynamodbav:"ContextParams,omitempty"`
	Status        string `dynamodbav:"Status"`
	GraphID       string `dynamodbav:"GraphID,omitempty"`
	CreatedAt     string `dynamodbav:"CreatedAt"`
	UpdatedAt     string `dynamodbav:"UpdatedAt"`
}

func queryPK(queryID string) string { return fmt.Sprintf("QUERY#%s", queryID) }

// Save persists a query record
func (r *QueryRepository) Save(ctx context.Context, query *entities.Query) error {
	item := queryItem{
		PK:         queryPK(query.ID),
		SK:         "METADATA",
		GSI1PK:     fmt.Sprintf("USER#%s", query.UserID),
		GSI1SK:     fmt.Sprintf("QUERY#%s#%s", query.CreatedAt.Format(time.RFC3339), query.ID),
		EntityType: "QUERY",
		QueryID:    query.ID,
		UserID:     query.UserID,
		QueryText:  query.Text,
		Status:     string(query.Status),
		GraphID:    query.GraphID,
		CreatedAt:  query.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  query.UpdatedAt.Format(time.RFC3339),
	}
	if query.ContextParams != nil {
		params, err := json.Marshal(query.ContextParams)
		if err != nil {
			return fmt.Errorf("failed to marshal context params: %w", err)
		}
		item.ContextParams = string(params)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal query item: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save query",
			zap.Error(err),
			zap.String("queryID", query.ID))
		return apperrors.NewDatabaseError("save query", err)
	}
	return nil
}

// GetByID retrieves a query by its ID
func (r *QueryRepository) GetByID(ctx context.Context, id string) (*entities.Query, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: queryPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get query", err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("query '%s'", id))
	}
	return unmarshalQuery(result.Item)
}

// GetByUserID retrieves all queries for a user, newest last
func (r *QueryRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.Query, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID))).
		And(expression.Key("GSI1SK").BeginsWith("QUERY#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("list queries", err)
	}

	queries := make([]*entities.Query, 0, len(result.Items))
	for _, item := range result.Items {
		query, err := unmarshalQuery(item)
		if err != nil {
			r.logger.Warn("Skipping unreadable query item", zap.Error(err))
			continue
		}
		queries = append(queries, query)
	}
	return queries, nil
}

func unmarshalQuery(item map[string]types.AttributeValue) (*entities.Query, error) {
	var stored queryItem
	if err := attributevalue.UnmarshalMap(item, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal query item: %w", err)
	}

	query := &entities.Query{
		ID:      stored.QueryID,
		UserID:  stored.UserID,
		Text:    stored.QueryText,
		Status:  entities.QueryStatus(stored.Status),
		GraphID: stored.GraphID,
	}
	if stored.ContextParams != "" {
		var params entities.ContextParams
		if err := json.Unmarshal([]byte(stored.ContextParams), &params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal context params: %w", err)
		}
		query.ContextParams = &params
	}
	query.CreatedAt, _ = time.Parse(time.RFC3339, stored.CreatedAt)
	query.UpdatedAt, _ = time.Parse(time.RFC3339, stored.UpdatedAt)
	return query, nil
}
