// Package dynamodb persists solve journal entries to a DynamoDB table.
//
// Table schema:
//   - Partition key: system (string) - name of the solved system
//   - Sort key: created_at (string) - creation time in journal.TimeLayout
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name sparsela-journal \
//	  --attribute-definitions AttributeName=system,AttributeType=S AttributeName=created_at,AttributeType=S \
//	  --key-schema AttributeName=system,KeyType=HASH AttributeName=created_at,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/hupe1980/sparsela/journal"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Journal implements journal.Journal on a DynamoDB table.
type Journal struct {
	client    DDBClient
	tableName string
}

var _ journal.Journal = (*Journal)(nil)

// New creates a journal writing to tableName.
func New(client DDBClient, tableName string) *Journal {
	return &Journal{client: client, tableName: tableName}
}

// Append writes e. It fails with journal.ErrDuplicate when the table already
// holds an entry for the same system and creation time.
func (j *Journal) Append(ctx context.Context, e journal.Entry) error {
	_, err := j.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(j.tableName),
		Item:                marshalEntry(e),
		ConditionExpression: aws.String("attribute_not_exists(created_at)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return journal.ErrDuplicate
		}
		return fmt.Errorf("failed to append journal entry to DynamoDB: %w", err)
	}
	return nil
}

// List returns up to limit entries of system, newest first.
func (j *Journal) List(ctx context.Context, system string, limit int) ([]journal.Entry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(j.tableName),
		KeyConditionExpression: aws.String("#sys = :sys"),
		ExpressionAttributeNames: map[string]string{
			"#sys": "system",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sys": &types.AttributeValueMemberS{Value: system},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	var entries []journal.Entry
	for {
		resp, err := j.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}
		for _, item := range resp.Items {
			e, err := unmarshalEntry(item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
			if limit > 0 && len(entries) == limit {
				return entries, nil
			}
		}
		if len(resp.LastEvaluatedKey) == 0 {
			return entries, nil
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}
}

func marshalEntry(e journal.Entry) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"system":     &types.AttributeValueMemberS{Value: e.System},
		"created_at": &types.AttributeValueMemberS{Value: e.SortKey()},
		"id":         &types.AttributeValueMemberS{Value: e.ID.String()},
		"method":     &types.AttributeValueMemberS{Value: e.Method},
		"rows":       numInt(e.Rows),
		"cols":       numInt(e.Cols),
		"lanes":      numInt(e.Lanes),
		"lane_width": numInt(e.LaneWidth),
		"iterations": numInt(e.Iterations),
		"residual":   numFloat(e.Residual),
		"elapsed_ns": &types.AttributeValueMemberN{Value: strconv.FormatInt(e.Elapsed.Nanoseconds(), 10)},
		"converged":  &types.AttributeValueMemberBOOL{Value: e.Converged},
		"param":      numFloat(e.Param),
	}
}

func numInt(v int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(v)}
}

func numFloat(v float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

type itemDecoder struct {
	item map[string]types.AttributeValue
	err  error
}

func (d *itemDecoder) fail(name string) {
	if d.err == nil {
		d.err = fmt.Errorf("invalid %s attribute in DynamoDB", name)
	}
}

func (d *itemDecoder) strAttr(name string) string {
	a, ok := d.item[name].(*types.AttributeValueMemberS)
	if !ok {
		d.fail(name)
		return ""
	}
	return a.Value
}

func (d *itemDecoder) numAttr(name string) string {
	a, ok := d.item[name].(*types.AttributeValueMemberN)
	if !ok {
		d.fail(name)
		return "0"
	}
	return a.Value
}

func (d *itemDecoder) intAttr(name string) int {
	v, err := strconv.Atoi(d.numAttr(name))
	if err != nil {
		d.fail(name)
	}
	return v
}

func (d *itemDecoder) floatAttr(name string) float64 {
	v, err := strconv.ParseFloat(d.numAttr(name), 64)
	if err != nil {
		d.fail(name)
	}
	return v
}

func (d *itemDecoder) boolAttr(name string) bool {
	a, ok := d.item[name].(*types.AttributeValueMemberBOOL)
	if !ok {
		d.fail(name)
		return false
	}
	return a.Value
}

func unmarshalEntry(item map[string]types.AttributeValue) (journal.Entry, error) {
	d := &itemDecoder{item: item}

	id, err := uuid.Parse(d.strAttr("id"))
	if err != nil && d.err == nil {
		d.fail("id")
	}
	createdAt, err := time.Parse(journal.TimeLayout, d.strAttr("created_at"))
	if err != nil && d.err == nil {
		d.fail("created_at")
	}
	elapsed, err := strconv.ParseInt(d.numAttr("elapsed_ns"), 10, 64)
	if err != nil {
		d.fail("elapsed_ns")
	}

	e := journal.Entry{
		ID:         id,
		System:     d.strAttr("system"),
		Method:     d.strAttr("method"),
		Rows:       d.intAttr("rows"),
		Cols:       d.intAttr("cols"),
		Lanes:      d.intAttr("lanes"),
		LaneWidth:  d.intAttr("lane_width"),
		Iterations: d.intAttr("iterations"),
		Residual:   d.floatAttr("residual"),
		Elapsed:    time.Duration(elapsed),
		Converged:  d.boolAttr("converged"),
		Param:      d.floatAttr("param"),
		CreatedAt:  createdAt,
	}
	if d.err != nil {
		return journal.Entry{}, d.err
	}
	return e, nil
}
