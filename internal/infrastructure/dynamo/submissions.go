package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/council-xenith/internal/domain"
)

const submissionTemplateIndex = "template_slug-created_at-index"

// SubmissionRepo stores registration submissions.
// PK: submission_id. GSI template_slug-created_at-index lists a template's
// submissions newest first. One submission per (template, email) is enforced
// with submission#<slug>#<email> claims.
type SubmissionRepo struct {
	client      *dynamodb.Client
	tableName   string
	claimsTable string
}

func NewSubmissionRepo(client *dynamodb.Client, tableName, claimsTable string) *SubmissionRepo {
	return &SubmissionRepo{client: client, tableName: tableName, claimsTable: claimsTable}
}

func submissionClaim(slug, email string) string { return "submission#" + slug + "#" + email }

// Create stores s. When s.Email is set the write also claims the
// (template, email) pair and fails with ErrClaimTaken if it is already used.
func (r *SubmissionRepo) Create(ctx context.Context, s *domain.Submission) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	put := &types.Put{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "submission_id"},
	}
	if s.Email == "" {
		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                put.TableName,
			Item:                     put.Item,
			ConditionExpression:      put.ConditionExpression,
			ExpressionAttributeNames: put.ExpressionAttributeNames,
		})
		if isConditionFailed(err) {
			return ErrConditionFailed
		}
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: put},
			claimPut(r.claimsTable, submissionClaim(s.TemplateSlug, s.Email), s.SubmissionID, s.CreatedAt),
		},
	})
	if err == nil {
		return nil
	}
	failed, ok := canceledAt(err)
	if !ok {
		return err
	}
	if len(failed) > 1 && failed[1] {
		return ErrClaimTaken
	}
	if len(failed) > 0 && failed[0] {
		return ErrConditionFailed
	}
	if txnConflicted(err) {
		return ErrTxnConflict
	}
	return err
}

// ExistsForEmail reports whether email already submitted to slug.
func (r *SubmissionRepo) ExistsForEmail(ctx context.Context, slug, email string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.claimsTable),
		Key:                  strKey(attrClaim, submissionClaim(slug, email)),
		ProjectionExpression: aws.String("#c"),
		ExpressionAttributeNames: map[string]string{
			"#c": attrClaim,
		},
	})
	if err != nil {
		return false, err
	}
	return out.Item != nil, nil
}

func (r *SubmissionRepo) Get(ctx context.Context, id string) (*domain.Submission, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("submission_id", id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("submission %q: %w", id, domain.ErrNotFound)
	}
	var s domain.Submission
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByTemplate returns a page of slug's submissions, newest first.
func (r *SubmissionRepo) ListByTemplate(ctx context.Context, slug string, limit int32, cursor string) ([]domain.Submission, string, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(submissionTemplateIndex),
		KeyConditionExpression:   aws.String("#t = :slug"),
		ExpressionAttributeNames: map[string]string{"#t": attrTemplateSlug},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":slug": &types.AttributeValueMemberS{Value: slug},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	}
	if cursor != "" {
		start, err := startKeyFromCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = start
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var subs []domain.Submission
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &subs); err != nil {
		return nil, "", err
	}
	return subs, cursorFromKey(out.LastEvaluatedKey), nil
}

// Delete removes the submission and releases its email claim.
func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	items := []types.TransactWriteItem{{
		Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key:       strKey("submission_id", id),
		},
	}}
	if s.Email != "" {
		items = append(items, claimDelete(r.claimsTable, submissionClaim(s.TemplateSlug, s.Email)))
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	return err
}

// DeleteByTemplate removes every submission of slug along with its claims.
func (r *SubmissionRepo) DeleteByTemplate(ctx context.Context, slug string) (int, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(submissionTemplateIndex),
		KeyConditionExpression:   aws.String("#t = :slug"),
		ExpressionAttributeNames: map[string]string{"#t": attrTemplateSlug},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":slug": &types.AttributeValueMemberS{Value: slug},
		},
	})
	n := 0
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return n, err
		}
		var subs []domain.Submission
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &subs); err != nil {
			return n, err
		}
		for _, s := range subs {
			if err := r.Delete(ctx, s.SubmissionID); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
