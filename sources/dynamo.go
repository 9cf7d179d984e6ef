package sources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cachewell/refreshcache"
)

// DynamoAPI captures the subset of the DynamoDB client a fetcher needs.
// Narrowed from dynamocache.DynamoAPI, which also covered PutItem,
// DeleteItem, BatchWriteItem, Scan, CreateTable, and DescribeTable for its
// full Store contract — a fetcher only ever reads.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoGetItem returns a Func that fetches one item by key on every
// refresh and returns its raw attribute map. Callers wanting a typed value
// should wrap the returned Func and run attributevalue.UnmarshalMap over
// its result.
func DynamoGetItem(ctx context.Context, client DynamoAPI, table string, key map[string]types.AttributeValue) refreshcache.Func[map[string]types.AttributeValue] {
	return func() (map[string]types.AttributeValue, error) {
		out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: &table,
			Key:       key,
		})
		if err != nil {
			return nil, err
		}
		return out.Item, nil
	}
}
