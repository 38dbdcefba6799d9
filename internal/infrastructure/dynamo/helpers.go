package dynamo

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/council-xenith/internal/domain"
)

var (
	// ErrConditionFailed is returned when a conditional write was rejected.
	ErrConditionFailed = fmt.Errorf("condition check failed: %w", domain.ErrConflict)
	// ErrClaimTaken is returned when a uniqueness claim already exists.
	ErrClaimTaken = fmt.Errorf("unique value already taken: %w", domain.ErrConflict)
	// ErrTxnConflict is returned when a transaction lost a race with another
	// in-flight transaction on the same items. Callers may re-read and retry.
	ErrTxnConflict = fmt.Errorf("transaction conflict: %w", domain.ErrConflict)
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts field->value into a DynamoDB SET expression.
// Fields are emitted in sorted order so the expression is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (*updateExpr, error) {
	if len(updates) == 0 {
		return nil, errors.New("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := &updateExpr{
		Expr:   "SET ",
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		if i > 0 {
			ue.Expr += ", "
		}
		ue.Expr += fmt.Sprintf("%s = %s", nameKey, valueKey)
	}
	return ue, nil
}

// claimPut is a transaction item that inserts a uniqueness claim and fails
// if the claim already exists.
func claimPut(table, claim, owner string, now time.Time) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(table),
			Item: map[string]types.AttributeValue{
				attrClaim:     &types.AttributeValueMemberS{Value: claim},
				"owner":       &types.AttributeValueMemberS{Value: owner},
				attrCreatedAt: &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339Nano)},
			},
			ConditionExpression:      aws.String("attribute_not_exists(#c)"),
			ExpressionAttributeNames: map[string]string{"#c": attrClaim},
		},
	}
}

func claimDelete(table, claim string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(table),
			Key:       strKey(attrClaim, claim),
		},
	}
}

// canceledAt reports, per transaction item, whether it was rejected by its
// condition. ok is false when err is not a transaction cancellation.
func canceledAt(err error) (failed []bool, ok bool) {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil, false
	}
	failed = make([]bool, len(tce.CancellationReasons))
	for i, r := range tce.CancellationReasons {
		failed[i] = aws.ToString(r.Code) == "ConditionalCheckFailed"
	}
	return failed, true
}

// txnConflicted reports whether any item of a canceled transaction collided
// with a concurrent transaction.
func txnConflicted(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	for _, r := range tce.CancellationReasons {
		if aws.ToString(r.Code) == "TransactionConflict" {
			return true
		}
	}
	return false
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func encodeCursor(v string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(v))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
	}
	return string(b), nil
}

// cursorFromKey encodes a LastEvaluatedKey made of string attributes.
// Returns "" when key is empty.
func cursorFromKey(key map[string]types.AttributeValue) string {
	if len(key) == 0 {
		return ""
	}
	flat := make(map[string]string, len(key))
	for k, v := range key {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			flat[k] = s.Value
		}
	}
	b, _ := json.Marshal(flat)
	return encodeCursor(string(b))
}

func startKeyFromCursor(cursor string) (map[string]types.AttributeValue, error) {
	raw, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	var flat map[string]string
	if err := json.Unmarshal([]byte(raw), &flat); err != nil || len(flat) == 0 {
		return nil, fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
	}
	key := make(map[string]types.AttributeValue, len(flat))
	for k, v := range flat {
		key[k] = &types.AttributeValueMemberS{Value: v}
	}
	return key, nil
}
