package dynamodb

import (
	"context"
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

// DocumentRepository implements ports.DocumentRepository on the shared
// table. Chunk vectors live in the search index, not here; this stores the
// canonical document record.
type DocumentRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.DocumentRepository {
	return &DocumentRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// documentItem represents the DynamoDB item structure for a document
type documentItem struct {
	PK         string            `dynamodbav:"PK"`
	SK         string            `dynamodbav:"SK"`
	GSI1PK     string            `dynamodbav:"GSI1PK"`
	GSI1SK     string            `dynamodbav:"GSI1SK"`
	EntityType string            `dynamodbav:"EntityType"`
	DocumentID string            `dynamodbav:"DocumentID"`
	Title      string            `dynamodbav:"Title"`
	Author     string            `dynamodbav:"Author,omitempty"`
	Content    string            `dynamodbav:"Content"`
	Metadata   map[string]string `dynamodbav:"Metadata,omitempty"`
	CreatedAt  string            `dynamodbav:"CreatedAt"`
	UpdatedAt  string            `dynamodbav:"UpdatedAt"`
}

func documentPK(id string) string { return fmt.Sprintf("DOC#%s", id) }

// Save persists a document
func (r *DocumentRepository) Save(ctx context.Context, doc *entities.Document) error {
	item := documentItem{
		PK:         documentPK(doc.ID),
		SK:         "METADATA",
		GSI1PK:     "DOCUMENT",
		GSI1SK:     fmt.Sprintf("DOC#%s#%s", doc.CreatedAt.Format(time.RFC3339), doc.ID),
		EntityType: "DOCUMENT",
		DocumentID: doc.ID,
		Title:      doc.Title,
		Author:     doc.Author,
		Content:    doc.Content,
		Metadata:   doc.Metadata,
		CreatedAt:  doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  doc.UpdatedAt.Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal document item: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save document",
			zap.Error(err),
			zap.String("documentID", doc.ID))
		return apperrors.NewDatabaseError("save document", err)
	}
	return nil
}

// GetByID retrieves a document by its ID
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: documentPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get document", err)
	}
	if result.Item == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("document '%s'", id))
	}
	return unmarshalDocument(result.Item)
}

// List retrieves all documents, oldest first
func (r *DocumentRepository) List(ctx context.Context) ([]*entities.Document, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("DOCUMENT"))
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
		return nil, apperrors.NewDatabaseError("list documents", err)
	}

	docs := make([]*entities.Document, 0, len(result.Items))
	for _, item := range result.Items {
		doc, err := unmarshalDocument(item)
		if err != nil {
			r.logger.Warn("Skipping unreadable document item", zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete removes a document
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: documentPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	}); err != nil {
		return apperrors.NewDatabaseError("delete document", err)
	}
	return nil
}

func unmarshalDocument(item map[string]types.AttributeValue) (*entities.Document, error) {
	var stored documentItem
	if err := attributevalue.UnmarshalMap(item, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document item: %w", err)
	}

	doc := &entities.Document{
		ID:       stored.DocumentID,
		Title:    stored.Title,
		Author:   stored.Author,
		Content:  stored.Content,
		Metadata: stored.Metadata,
	}
	doc.CreatedAt, _ = time.Parse(time.RFC3339, stored.CreatedAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339, stored.UpdatedAt)
	return doc, nil
}
