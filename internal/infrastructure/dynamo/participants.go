package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/council-xenith/internal/domain"
)

// ParticipantRepo stores Xenith participants.
// PK: email. Level keys are indexed by sparse GSIs and made unique through
// level_key#<key> rows in the claims table.
type ParticipantRepo struct {
	client      *dynamodb.Client
	tableName   string
	claimsTable string
}

func NewParticipantRepo(client *dynamodb.Client, tableName, claimsTable string) *ParticipantRepo {
	return &ParticipantRepo{client: client, tableName: tableName, claimsTable: claimsTable}
}

func levelKeyClaim(key string) string { return "level_key#" + key }

func (r *ParticipantRepo) Get(ctx context.Context, email string) (*domain.Participant, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("participant not found: %w", domain.ErrNotFound)
	}
	var p domain.Participant
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByKey resolves the participant holding key at the given level.
func (r *ParticipantRepo) GetByKey(ctx context.Context, level domain.Level, key string) (*domain.Participant, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(levelKeyIndex(int(level))),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": levelKeyAttr(int(level))},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: key}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("level %d key not found: %w", level, domain.ErrNotFound)
	}
	var p domain.Participant
	if err := attributevalue.UnmarshalMap(out.Items[0], &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts p together with the claim on p.Level1Key in one transaction.
// Returns ErrConditionFailed when a record for p.Email already exists,
// ErrClaimTaken when the key belongs to someone else and ErrTxnConflict when
// a concurrent transaction on the same items won.
func (r *ParticipantRepo) Create(ctx context.Context, p *domain.Participant) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     item,
				ConditionExpression:      aws.String("attribute_not_exists(#e)"),
				ExpressionAttributeNames: map[string]string{"#e": attrEmail},
			}},
			claimPut(r.claimsTable, levelKeyClaim(p.Level1Key), p.Email, p.CreatedAt),
		},
	})
	return r.txnErr(err)
}

// SetLevelKey atomically stores key for level (2 or 3) and stamps
// verified_at, provided the previous level's key exists and this level's key
// does not. Returns ErrConditionFailed when those preconditions do not hold
// and ErrClaimTaken when the key belongs to someone else.
func (r *ParticipantRepo) SetLevelKey(ctx context.Context, email string, level domain.Level, key string, at time.Time) error {
	if level < domain.Level2 || level > domain.Level3 {
		return fmt.Errorf("level %d cannot be advanced to: %w", level, domain.ErrBadRequest)
	}
	atAV, err := attributevalue.Marshal(at.UTC())
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:           aws.String(r.tableName),
				Key:                 strKey(attrEmail, email),
				UpdateExpression:    aws.String("SET #k = :key, #va.#stamp = :at, #ua = :at"),
				ConditionExpression: aws.String("attribute_exists(#e) AND attribute_exists(#prev) AND attribute_not_exists(#k)"),
				ExpressionAttributeNames: map[string]string{
					"#k":     levelKeyAttr(int(level)),
					"#prev":  levelKeyAttr(int(level) - 1),
					"#e":     attrEmail,
					"#va":    attrVerifiedAt,
					"#stamp": level.Stamp(),
					"#ua":    attrUpdatedAt,
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":key": &types.AttributeValueMemberS{Value: key},
					":at":  atAV,
				},
			}},
			claimPut(r.claimsTable, levelKeyClaim(key), email, at),
		},
	})
	return r.txnErr(err)
}

// ScanPage returns a page of participants. cursor is an opaque token from a
// previous call; the returned cursor is empty when there are no more pages.
func (r *ParticipantRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Participant, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}
	if cursor != "" {
		start, err := startKeyFromCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = start
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var participants []domain.Participant
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &participants); err != nil {
		return nil, "", err
	}
	return participants, cursorFromKey(out.LastEvaluatedKey), nil
}

// txnErr maps a two-item (record, claim) transaction failure.
func (r *ParticipantRepo) txnErr(err error) error {
	if err == nil {
		return nil
	}
	failed, ok := canceledAt(err)
	if !ok {
		return err
	}
	if len(failed) > 0 && failed[0] {
		return ErrConditionFailed
	}
	if len(failed) > 1 && failed[1] {
		return ErrClaimTaken
	}
	if txnConflicted(err) {
		return ErrTxnConflict
	}
	return err
}
