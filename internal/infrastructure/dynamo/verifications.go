package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/customer-intake-api/internal/domain"
)

// VerificationRepo manages OTP verification records.
// PK: phone_number, SK: verification_id (ULID).
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Put(ctx context.Context, v *domain.Verification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// DeleteByPhone removes every record for the number and returns how many were deleted.
func (r *VerificationRepo) DeleteByPhone(ctx context.Context, phone string) (int, error) {
	deleted := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                aws.String(r.tableName),
			KeyConditionExpression:   aws.String("#pk = :pk"),
			ProjectionExpression:     aws.String("#pk, #sk"),
			ExpressionAttributeNames: map[string]string{"#pk": fieldPhoneNumber, "#sk": fieldVerificationID},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: phone},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return deleted, err
		}
		for _, item := range out.Items {
			sk, ok := item[fieldVerificationID].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			if err := r.Delete(ctx, phone, sk.Value); err != nil {
				return deleted, err
			}
			deleted++
		}
		if len(out.LastEvaluatedKey) == 0 {
			return deleted, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *VerificationRepo) Delete(ctx context.Context, phone, verificationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey(fieldPhoneNumber, phone, fieldVerificationID, verificationID),
	})
	return err
}

// ListByPhone returns every record for the number, newest first.
func (r *VerificationRepo) ListByPhone(ctx context.Context, phone string) ([]domain.Verification, error) {
	var all []domain.Verification
	err := r.queryNewestFirst(ctx, phone, nil, func(page []domain.Verification) bool {
		all = append(all, page...)
		return true
	})
	return all, err
}

// LatestPending returns the most recent record with verified = false.
func (r *VerificationRepo) LatestPending(ctx context.Context, phone string) (*domain.Verification, error) {
	return r.latestWithVerified(ctx, phone, false)
}

// LatestVerified returns the most recent record with verified = true.
func (r *VerificationRepo) LatestVerified(ctx context.Context, phone string) (*domain.Verification, error) {
	return r.latestWithVerified(ctx, phone, true)
}

func (r *VerificationRepo) latestWithVerified(ctx context.Context, phone string, verified bool) (*domain.Verification, error) {
	var found *domain.Verification
	filter := &filterSpec{
		expr:  "#verified = :verified",
		names: map[string]string{"#verified": fieldVerified},
		values: map[string]types.AttributeValue{
			":verified": &types.AttributeValueMemberBOOL{Value: verified},
		},
	}
	err := r.queryNewestFirst(ctx, phone, filter, func(page []domain.Verification) bool {
		if len(page) == 0 {
			return true
		}
		found = &page[0]
		return false
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	return found, nil
}

type filterSpec struct {
	expr   string
	names  map[string]string
	values map[string]types.AttributeValue
}

// queryNewestFirst pages through the partition in descending sort-key order.
// A filter is applied after Limit by DynamoDB, so pages may be empty; fn
// returns false to stop early.
func (r *VerificationRepo) queryNewestFirst(ctx context.Context, phone string, filter *filterSpec, fn func([]domain.Verification) bool) error {
	names := map[string]string{"#pk": fieldPhoneNumber}
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: phone},
	}
	var filterExpr *string
	if filter != nil {
		filterExpr = aws.String(filter.expr)
		for k, v := range filter.names {
			names[k] = v
		}
		for k, v := range filter.values {
			values[k] = v
		}
	}

	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    aws.String("#pk = :pk"),
			FilterExpression:          filterExpr,
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
			ScanIndexForward:          aws.Bool(false),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return err
		}
		var page []domain.Verification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return fmt.Errorf("unmarshal verifications: %w", err)
		}
		if !fn(page) || len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// IncrementAttempts adds one to the attempt counter in a single conditional
// write and returns the new value. The write only succeeds while the record
// exists, is unverified and is below maxAttempts, so concurrent mismatches
// are all counted and the counter never passes the ceiling.
func (r *VerificationRepo) IncrementAttempts(ctx context.Context, phone, verificationID string, maxAttempts int) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey(fieldPhoneNumber, phone, fieldVerificationID, verificationID),
		UpdateExpression:    aws.String("SET #attempts = #attempts + :one"),
		ConditionExpression: aws.String("attribute_exists(#pk) AND #verified = :false AND #attempts < :max"),
		ExpressionAttributeNames: map[string]string{
			"#pk":       fieldPhoneNumber,
			"#attempts": fieldAttempts,
			"#verified": fieldVerified,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":   &types.AttributeValueMemberN{Value: "1"},
			":false": &types.AttributeValueMemberBOOL{Value: false},
			":max":   &types.AttributeValueMemberN{Value: strconv.Itoa(maxAttempts)},
		},
		ReturnValues:                        types.ReturnValueUpdatedNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		return 0, conditionError(err, maxAttempts)
	}
	n, ok := numberAttr(out.Attributes, fieldAttempts)
	if !ok {
		return 0, fmt.Errorf("increment attempts: missing %s in response", fieldAttempts)
	}
	return n, nil
}

// MarkVerified flips verified to true exactly once.
func (r *VerificationRepo) MarkVerified(ctx context.Context, phone, verificationID string, at time.Time, maxAttempts int) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldVerified:   true,
		fieldVerifiedAt: at,
	})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldPhoneNumber
	ue.Names["#attempts"] = fieldAttempts
	ue.Names["#verified"] = fieldVerified
	ue.Values[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	ue.Values[":max"] = &types.AttributeValueMemberN{Value: strconv.Itoa(maxAttempts)}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 compositeKey(fieldPhoneNumber, phone, fieldVerificationID, verificationID),
		UpdateExpression:                    aws.String(ue.Expr),
		ConditionExpression:                 aws.String("attribute_exists(#pk) AND #verified = :false AND #attempts < :max"),
		ExpressionAttributeNames:            ue.Names,
		ExpressionAttributeValues:           ue.Values,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		return conditionError(err, maxAttempts)
	}
	return nil
}

// conditionError translates a failed conditional write into the domain error
// matching the record's state at the time of the write.
func conditionError(err error, maxAttempts int) error {
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return err
	}
	return classifyOldImage(ccf.Item, maxAttempts)
}

func classifyOldImage(item map[string]types.AttributeValue, maxAttempts int) error {
	if len(item) == 0 {
		// Superseded by a newer code between read and write.
		return fmt.Errorf("verification superseded: %w", domain.ErrOTPNotFound)
	}
	if boolAttr(item, fieldVerified) {
		return fmt.Errorf("verification already used: %w", domain.ErrOTPNotFound)
	}
	if n, ok := numberAttr(item, fieldAttempts); ok && n >= maxAttempts {
		return fmt.Errorf("verification locked: %w", domain.ErrOTPAttemptsExhausted)
	}
	return fmt.Errorf("verification changed concurrently: %w", domain.ErrOTPNotFound)
}

// ScanPurgeable returns up to limit records whose purge_at is at or before now.
func (r *VerificationRepo) ScanPurgeable(ctx context.Context, now time.Time, limit int) ([]domain.Verification, error) {
	var out []domain.Verification
	var startKey map[string]types.AttributeValue
	for {
		page, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                aws.String(r.tableName),
			FilterExpression:         aws.String("#purgeAt <= :now"),
			ExpressionAttributeNames: map[string]string{"#purgeAt": fieldPurgeAt},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var items []domain.Verification
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal verifications: %w", err)
		}
		for _, v := range items {
			out = append(out, v)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
		if len(page.LastEvaluatedKey) == 0 {
			return out, nil
		}
		startKey = page.LastEvaluatedKey
	}
}
