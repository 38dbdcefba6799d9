package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/council-xenith/internal/domain"
)

// TemplateRepo stores registration templates. PK: slug.
type TemplateRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTemplateRepo(client *dynamodb.Client, tableName string) *TemplateRepo {
	return &TemplateRepo{client: client, tableName: tableName}
}

// Create inserts t, failing with ErrConditionFailed if the slug is taken.
func (r *TemplateRepo) Create(ctx context.Context, t *domain.RegistrationTemplate) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#s)"),
		ExpressionAttributeNames: map[string]string{"#s": attrSlug},
	})
	if isConditionFailed(err) {
		return ErrConditionFailed
	}
	return err
}

// Replace overwrites an existing template.
func (r *TemplateRepo) Replace(ctx context.Context, t *domain.RegistrationTemplate) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_exists(#s)"),
		ExpressionAttributeNames: map[string]string{"#s": attrSlug},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("template %q: %w", t.Slug, domain.ErrNotFound)
	}
	return err
}

func (r *TemplateRepo) Get(ctx context.Context, slug string) (*domain.RegistrationTemplate, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrSlug, slug),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("template %q: %w", slug, domain.ErrNotFound)
	}
	var t domain.RegistrationTemplate
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns every template. The table is small (one row per event), so a
// paginated full scan is acceptable.
func (r *TemplateRepo) List(ctx context.Context) ([]domain.RegistrationTemplate, error) {
	var templates []domain.RegistrationTemplate
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.RegistrationTemplate
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		templates = append(templates, page...)
	}
	return templates, nil
}

// SetActive flips the active flag of an existing template.
func (r *TemplateRepo) SetActive(ctx context.Context, slug string, active bool) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		attrActive:    active,
		attrUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#s"] = attrSlug
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrSlug, slug),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#s)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("template %q: %w", slug, domain.ErrNotFound)
	}
	return err
}

func (r *TemplateRepo) Delete(ctx context.Context, slug string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(attrSlug, slug),
		ConditionExpression:      aws.String("attribute_exists(#s)"),
		ExpressionAttributeNames: map[string]string{"#s": attrSlug},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("template %q: %w", slug, domain.ErrNotFound)
	}
	return err
}
