package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/council-xenith/internal/domain"
)

// MediaRepo stores metadata for images uploaded to the media bucket.
type MediaRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMediaRepo(client *dynamodb.Client, tableName string) *MediaRepo {
	return &MediaRepo{client: client, tableName: tableName}
}

func (r *MediaRepo) Put(ctx context.Context, m *domain.Media) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal media: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *MediaRepo) Get(ctx context.Context, mediaID string) (*domain.Media, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("media_id", mediaID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("media not found: %w", domain.ErrNotFound)
	}
	var m domain.Media
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns all media, newest first.
func (r *MediaRepo) List(ctx context.Context) ([]domain.Media, error) {
	var media []domain.Media
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Media
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		media = append(media, page...)
	}
	sort.Slice(media, func(i, j int) bool { return media[i].CreatedAt.After(media[j].CreatedAt) })
	return media, nil
}

func (r *MediaRepo) Delete(ctx context.Context, mediaID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("media_id", mediaID),
	})
	return err
}
