package dynamodb

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsela/journal"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu       sync.RWMutex
	items    map[string]map[string]types.AttributeValue // system:created_at -> item
	pageSize int
	queries  int
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func itemKey(item map[string]types.AttributeValue) string {
	return item["system"].(*types.AttributeValueMemberS).Value + ":" +
		item["created_at"].(*types.AttributeValueMemberS).Value
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := itemKey(params.Item)
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(created_at)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++

	system := params.ExpressionAttributeValues[":sys"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["system"].(*types.AttributeValueMemberS).Value == system {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return itemKey(items[i]) > itemKey(items[j])
	})

	if start := params.ExclusiveStartKey; start != nil {
		startKey := itemKey(start)
		for len(items) > 0 && itemKey(items[0]) >= startKey {
			items = items[1:]
		}
	}

	n := len(items)
	if params.Limit != nil && int(*params.Limit) < n {
		n = int(*params.Limit)
	}
	if m.pageSize > 0 && m.pageSize < n {
		n = m.pageSize
	}

	out := &dynamodb.QueryOutput{Items: items[:n]}
	if n < len(items) {
		last := items[n-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"system":     last["system"],
			"created_at": last["created_at"],
		}
	}
	return out, nil
}

func testEntry(system string, at time.Time, iterations int) journal.Entry {
	return journal.Entry{
		ID:         uuid.New(),
		System:     system,
		Method:     "CG",
		Rows:       3,
		Cols:       3,
		Lanes:      3,
		LaneWidth:  1,
		Iterations: iterations,
		Residual:   1.5e-8,
		Elapsed:    42 * time.Microsecond,
		Converged:  true,
		Param:      1,
		CreatedAt:  at,
	}
}

func TestJournal_AppendList(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	j := New(ddb, "sparsela-journal")

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	want := testEntry("poisson", base, 12)
	require.NoError(t, j.Append(ctx, want))
	require.NoError(t, j.Append(ctx, testEntry("poisson", base.Add(time.Second), 13)))
	require.NoError(t, j.Append(ctx, testEntry("other", base, 1)))

	got, err := j.List(ctx, "poisson", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 13, got[0].Iterations)
	assert.Equal(t, want, got[1])
}

func TestJournal_Duplicate(t *testing.T) {
	ctx := context.Background()
	j := New(newMockDDBClient(), "sparsela-journal")

	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, j.Append(ctx, testEntry("poisson", at, 1)))

	err := j.Append(ctx, testEntry("poisson", at, 2))
	assert.ErrorIs(t, err, journal.ErrDuplicate)
}

func TestJournal_ListPagination(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	ddb.pageSize = 2
	j := New(ddb, "sparsela-journal")

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, j.Append(ctx, testEntry("poisson", base.Add(time.Duration(i)*time.Minute), i)))
	}

	all, err := j.List(ctx, "poisson", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, e := range all {
		assert.Equal(t, 4-i, e.Iterations)
	}
	assert.Equal(t, 3, ddb.queries)

	top, err := j.List(ctx, "poisson", 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, 2, top[2].Iterations)
}

func TestJournal_InvalidItem(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	ddb.items["poisson:x"] = map[string]types.AttributeValue{
		"system":     &types.AttributeValueMemberS{Value: "poisson"},
		"created_at": &types.AttributeValueMemberS{Value: "x"},
	}

	_, err := New(ddb, "sparsela-journal").List(ctx, "poisson", 0)
	require.Error(t, err)
}

type failingClient struct{ mockDDBClient }

func (failingClient) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return nil, errors.New("throttled")
}

func TestJournal_AppendError(t *testing.T) {
	j := New(&failingClient{}, "sparsela-journal")
	err := j.Append(context.Background(), testEntry("poisson", time.Now(), 1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, journal.ErrDuplicate)
	assert.Contains(t, err.Error(), "throttled")
}

func TestUnmarshalEntry_Numbers(t *testing.T) {
	e := testEntry("poisson", time.Now(), 17)
	e.Residual = 2.5e-7

	got, err := unmarshalEntry(marshalEntry(e))
	require.NoError(t, err)
	assert.Equal(t, 17, got.Iterations)
	assert.InDelta(t, 2.5e-7, got.Residual, 1e-20)

	tests := []struct {
		attr  string
		value string
	}{
		{"rows", "1.5"},
		{"iterations", "many"},
		{"residual", "NaN-ish"},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			item := marshalEntry(e)
			item[tt.attr] = &types.AttributeValueMemberN{Value: tt.value}
			_, err := unmarshalEntry(item)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.attr)
		})
	}
}
