package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/customer-intake-api/internal/domain"
)

// CustomerRepo provides typed DynamoDB operations for the customers table.
// WhatsApp numbers and emails are claimed in a separate guard table so two
// registrations cannot both take the same value.
type CustomerRepo struct {
	client       *dynamodb.Client
	tableName    string
	uniquesTable string
}

func NewCustomerRepo(client *dynamodb.Client, tableName, uniquesTable string) *CustomerRepo {
	return &CustomerRepo{client: client, tableName: tableName, uniquesTable: uniquesTable}
}

// Put inserts a new profile and claims its WhatsApp number and email in one
// transaction. It never overwrites an existing customer or claim.
func (r *CustomerRepo) Put(ctx context.Context, c *domain.Customer) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	items := []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:                aws.String(r.tableName),
			Item:                     item,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": fieldCustomerID},
		}},
		r.claim(uniqueWhatsAppPrefix+c.WhatsAppNumber, c.CustomerID),
	}
	if c.Email != nil && *c.Email != "" {
		items = append(items, r.claim(uniqueEmailPrefix+*c.Email, c.CustomerID))
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		return putConflict(tce.CancellationReasons, c.CustomerID)
	}
	return err
}

func (r *CustomerRepo) claim(key, customerID string) types.TransactWriteItem {
	return types.TransactWriteItem{Put: &types.Put{
		TableName: aws.String(r.uniquesTable),
		Item: map[string]types.AttributeValue{
			fieldUniqueKey:  &types.AttributeValueMemberS{Value: key},
			fieldCustomerID: &types.AttributeValueMemberS{Value: customerID},
		},
		ConditionExpression:      aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]string{"#k": fieldUniqueKey},
	}}
}

const (
	uniqueWhatsAppPrefix = "whatsapp#"
	uniqueEmailPrefix    = "email#"
)

// putConflict maps the failed item of a cancelled Put transaction to the
// matching conflict. Reasons are positional: customer, WhatsApp, email.
func putConflict(reasons []types.CancellationReason, customerID string) error {
	failed := func(i int) bool {
		return i < len(reasons) && aws.ToString(reasons[i].Code) == "ConditionalCheckFailed"
	}
	switch {
	case failed(1):
		return domain.ErrWhatsAppTaken
	case failed(2):
		return domain.ErrEmailTaken
	case failed(0):
		return fmt.Errorf("customer %s exists: %w", customerID, domain.ErrConflict)
	default:
		return fmt.Errorf("customer transaction cancelled: %v", reasons)
	}
}

func (r *CustomerRepo) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldCustomerID, customerID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("customer not found: %w", domain.ErrNotFound)
	}
	var c domain.Customer
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ExistsByWhatsApp reports whether a profile already uses the number.
func (r *CustomerRepo) ExistsByWhatsApp(ctx context.Context, phone string) (bool, error) {
	return r.existsByIndex(ctx, "whatsapp_number-index", fieldWhatsAppNumber, phone)
}

// ExistsByEmail reports whether a profile already uses the email address.
func (r *CustomerRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.existsByIndex(ctx, "email-index", fieldEmail, email)
}

func (r *CustomerRepo) existsByIndex(ctx context.Context, index, attr, value string) (bool, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(index),
		KeyConditionExpression:   aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
		Select: types.SelectCount,
		Limit:  aws.Int32(1),
	})
	if err != nil {
		return false, err
	}
	return out.Count > 0, nil
}

// Page scans one page of customers. The page is ordered newest first; the
// returned cursor is empty on the last page.
func (r *CustomerRepo) Page(ctx context.Context, limit int32, cursor string) (*domain.CustomerPage, error) {
	startKey, err := decodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:         aws.String(r.tableName),
		Limit:             aws.Int32(limit),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &customers); err != nil {
		return nil, fmt.Errorf("unmarshal customers: %w", err)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})
	next, err := encodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return nil, err
	}
	return &domain.CustomerPage{Data: customers, NextCursor: next}, nil
}
