/**
 * Copyright 2026 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package dynamodb

import (
	"context"
	"errors"
	"path"
	"strings"

	"emperror.dev/emperror"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/xmidt-org/folio/store"
)

// client captures the methods of interest from the dynamoDB API. This
// should help mock API calls as well.
type client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	dynamodb.QueryAPIClient
}

// service defines the dynamodb specific DAO interface. It helps keeping middleware
// such as logging and instrumentation orthogonal to business logic.
type service interface {
	Put(ctx context.Context, key string, data []byte) (*types.ConsumedCapacity, error)
	Get(ctx context.Context, key string) ([]byte, bool, *types.ConsumedCapacity, error)
	Delete(ctx context.Context, key string) (*types.ConsumedCapacity, error)
	List(ctx context.Context, prefix string, max int) ([]string, *types.ConsumedCapacity, error)
}

// executor satisfies the service interface so the DynamoClient can then adapt
// the outputs to the store.Blobs contract.
type executor struct {
	// c is the dynamodb client
	c client

	// tableName is the name of the dynamodb table
	tableName string
}

// storableItem is one blob. The partition key is the blob's directory and the
// sort key its file name.
type storableItem struct {
	Bucket string `dynamodbav:"bucket"`
	ID     string `dynamodbav:"id"`
	Data   []byte `dynamodbav:"data"`
}

// Dynamo DB attribute keys
const (
	bucketAttributeKey = "bucket"
	idAttributeKey     = "id"
)

func splitKey(key string) (bucket, id string) {
	return path.Dir(key), path.Base(key)
}

// splitPrefix maps a listing prefix onto a partition and a sort key prefix.
// Listing never crosses partitions, so "data/postman/" doesn't include
// "data/postman/collections/x.json".
func splitPrefix(prefix string) (bucket, idPrefix string) {
	if strings.HasSuffix(prefix, "/") {
		return strings.TrimSuffix(prefix, "/"), ""
	}
	return path.Dir(prefix), path.Base(prefix)
}

func itemKey(key string) map[string]types.AttributeValue {
	bucket, id := splitKey(key)
	return map[string]types.AttributeValue{
		bucketAttributeKey: &types.AttributeValueMemberS{Value: bucket},
		idAttributeKey:     &types.AttributeValueMemberS{Value: id},
	}
}

func handleClientError(err error, op, key string) error {
	kind := store.KindTransient
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException" {
		kind = store.KindInvalid
	}
	return &store.Error{
		Kind:    kind,
		Op:      op,
		Key:     key,
		Backend: DynamoDB,
		Err:     emperror.WrapWith(err, "dynamodb operation failed", "op", op, "key", key),
	}
}

func (d *executor) Put(ctx context.Context, key string, data []byte) (*types.ConsumedCapacity, error) {
	bucket, id := splitKey(key)
	av, err := attributevalue.MarshalMap(storableItem{Bucket: bucket, ID: id, Data: data})
	if err != nil {
		return nil, &store.Error{Kind: store.KindSerialization, Op: "put", Key: key, Backend: DynamoDB, Err: err}
	}
	input := &dynamodb.PutItemInput{
		Item:                   av,
		TableName:              aws.String(d.tableName),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	}

	result, err := d.c.PutItem(ctx, input)
	var consumedCapacity *types.ConsumedCapacity
	if result != nil {
		consumedCapacity = result.ConsumedCapacity
	}

	if err != nil {
		return consumedCapacity, handleClientError(err, "put", key)
	}
	return consumedCapacity, nil
}

func (d *executor) Get(ctx context.Context, key string) ([]byte, bool, *types.ConsumedCapacity, error) {
	getOutput, err := d.c.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:              aws.String(d.tableName),
		Key:                    itemKey(key),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return nil, false, nil, handleClientError(err, "get", key)
	}
	if len(getOutput.Item) == 0 {
		return nil, false, getOutput.ConsumedCapacity, nil
	}
	item := new(storableItem)
	if err := attributevalue.UnmarshalMap(getOutput.Item, item); err != nil {
		return nil, false, getOutput.ConsumedCapacity, &store.Error{Kind: store.KindSerialization, Op: "get", Key: key, Backend: DynamoDB, Err: err}
	}
	return item.Data, true, getOutput.ConsumedCapacity, nil
}

func (d *executor) Delete(ctx context.Context, key string) (*types.ConsumedCapacity, error) {
	deleteOutput, err := d.c.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:              aws.String(d.tableName),
		Key:                    itemKey(key),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return nil, handleClientError(err, "delete", key)
	}
	return deleteOutput.ConsumedCapacity, nil
}

func (d *executor) List(ctx context.Context, prefix string, max int) ([]string, *types.ConsumedCapacity, error) {
	bucket, idPrefix := splitPrefix(prefix)
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("#b = :b"),
		ProjectionExpression:   aws.String("#b, #i"),
		ExpressionAttributeNames: map[string]string{
			"#b": bucketAttributeKey,
			"#i": idAttributeKey,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":b": &types.AttributeValueMemberS{Value: bucket},
		},
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	}
	if idPrefix != "" {
		input.KeyConditionExpression = aws.String("#b = :b AND begins_with(#i, :p)")
		input.ExpressionAttributeValues[":p"] = &types.AttributeValueMemberS{Value: idPrefix}
	}

	var (
		keys     = []string{}
		consumed *types.ConsumedCapacity
	)
	paginator := dynamodb.NewQueryPaginator(d.c, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, consumed, handleClientError(err, "list", prefix)
		}
		consumed = addCapacity(consumed, page.ConsumedCapacity)
		for _, i := range page.Items {
			item := new(storableItem)
			if err := attributevalue.UnmarshalMap(i, item); err != nil {
				continue
			}
			keys = append(keys, item.Bucket+"/"+item.ID)
			if max > 0 && len(keys) >= max {
				return keys, consumed, nil
			}
		}
	}
	return keys, consumed, nil
}

func addCapacity(total, page *types.ConsumedCapacity) *types.ConsumedCapacity {
	if page == nil {
		return total
	}
	if total == nil {
		total = &types.ConsumedCapacity{}
	}
	total.CapacityUnits = addUnits(total.CapacityUnits, page.CapacityUnits)
	total.ReadCapacityUnits = addUnits(total.ReadCapacityUnits, page.ReadCapacityUnits)
	total.WriteCapacityUnits = addUnits(total.WriteCapacityUnits, page.WriteCapacityUnits)
	return total
}

func addUnits(a, b *float64) *float64 {
	if b == nil {
		return a
	}
	if a == nil {
		return aws.Float64(*b)
	}
	return aws.Float64(*a + *b)
}

func newService(c client, tableName string) service {
	return &executor{
		c:         c,
		tableName: tableName,
	}
}
