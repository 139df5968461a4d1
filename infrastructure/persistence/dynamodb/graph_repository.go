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
	"stratgraph/domain/core/aggregates"
	"stratgraph/domain/core/entities"
	apperrors "stratgraph/pkg/errors"
)

// GraphRepository implements ports.GraphRepository on a single DynamoDB
// table. The tree and connection list are stored as JSON blobs on one item:
// graphs are written once and read whole, so item-per-node modeling would
// only buy write contention this workload does not have. Saves are
// last-write-wins.
type GraphRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewGraphRepository creates a new GraphRepository
func NewGraphRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.GraphRepository {
	return &GraphRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// graphItem represents the DynamoDB item structure for a graph
type graphItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	GSI1PK          string `dynamodbav:"GSI1PK"`
	GSI1SK          string `dynamodbav:"GSI1SK"`
	EntityType      string `dynamodbav:"EntityType"`
	GraphID         string `dynamodbav:"GraphID"`
	QueryID         string `dynamodbav:"QueryID"`
	UserID          string `dynamodbav:"UserID"`
	GraphData       string `dynamodbav:"GraphData"`
	ConnectionsData string `dynamodbav:"ConnectionsData,omitempty"`
	NodeCount       int    `dynamodbav:"NodeCount"`
	CreatedAt       string `dynamodbav:"CreatedAt"`
	UpdatedAt       string `dynamodbav:"UpdatedAt"`
}

func graphPK(userID string) string { return fmt.Sprintf("USER#%s", userID) }
func graphSK(graphID string) string { return fmt.Sprintf("GRAPH#%s", graphID) }

// Save persists a graph
func (r *GraphRepository) Save(ctx context.Context, graph *aggregates.Graph) error {
	treeJSON, err := json.Marshal(graph.Root())
	if err != nil {
		return fmt.Errorf("failed to marshal graph tree: %w", err)
	}
	connJSON, err := json.Marshal(graph.Connections())
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}

	item := graphItem{
		PK:              graphPK(graph.UserID()),
		SK:              graphSK(graph.ID()),
		GSI1PK:          fmt.Sprintf("GRAPHID#%s", graph.ID()),
		GSI1SK:          "METADATA",
		EntityType:      "GRAPH",
		GraphID:         graph.ID(),
		QueryID:         graph.QueryID(),
		UserID:          graph.UserID(),
		GraphData:       string(treeJSON),
		ConnectionsData: string(connJSON),
		NodeCount:       graph.NodeCount(),
		CreatedAt:       graph.CreatedAt().Format(time.RFC3339),
		UpdatedAt:       graph.UpdatedAt().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal graph item: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save graph",
			zap.Error(err),
			zap.String("graphID", graph.ID()))
		return apperrors.NewDatabaseError("save graph", err)
	}

	r.logger.Debug("Saved graph",
		zap.String("graphID", graph.ID()),
		zap.Int("nodeCount", graph.NodeCount()))
	return nil
}

// GetByID retrieves a graph by its ID via the GSI
func (r *GraphRepository) GetByID(ctx context.Context, id string) (*aggregates.Graph, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("GRAPHID#%s", id))).
		And(expression.Key("GSI1SK").Equal(expression.Value("METADATA")))
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
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get graph", err)
	}
	if len(result.Items) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("graph '%s'", id))
	}

	return unmarshalGraph(result.Items[0])
}

// GetByQueryID retrieves the graph produced by a query. The query record
// holds the graph id, so this is two key lookups.
func (r *GraphRepository) GetByQueryID(ctx context.Context, queryID string) (*aggregates.Graph, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: queryPK(queryID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get query", err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("query '%s'", queryID))
	}

	var record struct {
		GraphID string `dynamodbav:"GraphID"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal query item: %w", err)
	}
	if record.GraphID == "" {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("graph for query '%s'", queryID))
	}
	return r.GetByID(ctx, record.GraphID)
}

// GetByUserID retrieves all graphs for a user
func (r *GraphRepository) GetByUserID(ctx context.Context, userID string) ([]*aggregates.Graph, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(graphPK(userID))).
		And(expression.Key("SK").BeginsWith("GRAPH#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var graphs []*aggregates.Graph
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("list graphs", err)
		}
		for _, item := range result.Items {
			graph, err := unmarshalGraph(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable graph item", zap.Error(err))
				continue
			}
			graphs = append(graphs, graph)
		}
		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}
	return graphs, nil
}

// Delete removes a graph
func (r *GraphRepository) Delete(ctx context.Context, id string) error {
	graph, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: graphPK(graph.UserID())},
			"SK": &types.AttributeValueMemberS{Value: graphSK(id)},
		},
	}); err != nil {
		return apperrors.NewDatabaseError("delete graph", err)
	}
	return nil
}

func unmarshalGraph(item map[string]types.AttributeValue) (*aggregates.Graph, error) {
	var stored graphItem
	if err := attributevalue.UnmarshalMap(item, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph item: %w", err)
	}

	var root entities.GraphNode
	if err := json.Unmarshal([]byte(stored.GraphData), &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph tree: %w", err)
	}

	var connections []entities.Connection
	if stored.ConnectionsData != "" {
		if err := json.Unmarshal([]byte(stored.ConnectionsData), &connections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal connections: %w", err)
		}
	}

	createdAt, _ := time.Parse(time.RFC3339, stored.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, stored.UpdatedAt)

	return aggregates.ReconstructGraph(stored.GraphID, stored.QueryID, stored.UserID, &root, connections, createdAt, updatedAt), nil
}
