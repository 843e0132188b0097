package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/customer-intake-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"attempts": 1})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "attempts"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"verified_at": "2026-01-01T00:00:00Z",
		"attempts":    2,
		"verified":    true,
	}
	// Call twice to verify determinism.
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: attempts < verified < verified_at
	assert.Equal(t, "attempts", ue1.Names["#f0"])
	assert.Equal(t, "verified", ue1.Names["#f1"])
	assert.Equal(t, "verified_at", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"verified": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestCursor_RoundTrip(t *testing.T) {
	key := strKey("customer_id", "01HZX")
	cursor, err := encodeCursor(key)
	require.NoError(t, err)
	require.NotEmpty(t, cursor)

	back, err := decodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, key, back)
}

func TestCursor_EmptyAndInvalid(t *testing.T) {
	cursor, err := encodeCursor(nil)
	require.NoError(t, err)
	assert.Empty(t, cursor)

	key, err := decodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, key)

	_, err = decodeCursor("!!not-base64!!")
	assert.ErrorIs(t, err, errInvalidCursor)
}

func TestClassifyOldImage(t *testing.T) {
	assert.ErrorIs(t, classifyOldImage(nil, 3), domain.ErrOTPNotFound)

	used := map[string]types.AttributeValue{
		fieldVerified: &types.AttributeValueMemberBOOL{Value: true},
		fieldAttempts: &types.AttributeValueMemberN{Value: "0"},
	}
	assert.ErrorIs(t, classifyOldImage(used, 3), domain.ErrOTPNotFound)

	locked := map[string]types.AttributeValue{
		fieldVerified: &types.AttributeValueMemberBOOL{Value: false},
		fieldAttempts: &types.AttributeValueMemberN{Value: "3"},
	}
	assert.ErrorIs(t, classifyOldImage(locked, 3), domain.ErrOTPAttemptsExhausted)

	open := map[string]types.AttributeValue{
		fieldVerified: &types.AttributeValueMemberBOOL{Value: false},
		fieldAttempts: &types.AttributeValueMemberN{Value: "1"},
	}
	assert.ErrorIs(t, classifyOldImage(open, 3), domain.ErrOTPNotFound)
}

func TestConditionError_PassesThroughOtherErrors(t *testing.T) {
	other := &types.ResourceNotFoundException{}
	assert.Same(t, error(other), conditionError(other, 3))
}

func TestConditionError_UsesOldImage(t *testing.T) {
	ccf := &types.ConditionalCheckFailedException{Item: map[string]types.AttributeValue{
		fieldAttempts: &types.AttributeValueMemberN{Value: "3"},
	}}
	assert.ErrorIs(t, conditionError(ccf, 3), domain.ErrOTPAttemptsExhausted)
}

func TestPutConflict_MapsCancelledItem(t *testing.T) {
	ok := types.CancellationReason{Code: aws.String("None")}
	failed := types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}

	assert.ErrorIs(t, putConflict([]types.CancellationReason{ok, failed}, "c1"), domain.ErrWhatsAppTaken)
	assert.ErrorIs(t, putConflict([]types.CancellationReason{ok, ok, failed}, "c1"), domain.ErrEmailTaken)

	err := putConflict([]types.CancellationReason{failed, ok}, "c1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrWhatsAppTaken)

	err = putConflict([]types.CancellationReason{ok, {Code: aws.String("ThrottlingError")}}, "c1")
	assert.NotErrorIs(t, err, domain.ErrConflict)
}
