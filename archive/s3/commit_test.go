package s3

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/symgo/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDDBClient is an in-memory DynamoDB double for unit tests.
type fakeDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // base_uri:version -> item
}

func newFakeDDBClient() *fakeDDBClient {
	return &fakeDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func (m *fakeDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.Item["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := baseURI + ":" + version

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *fakeDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	baseURI := params.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == baseURI {
			items = append(items, item)
		}
	}

	// Descending by numeric version, like a real range key query with
	// ScanIndexForward=false.
	sort.Slice(items, func(i, j int) bool {
		vi, _ := strconv.Atoi(items[i]["version"].(*types.AttributeValueMemberN).Value)
		vj, _ := strconv.Atoi(items[j]["version"].(*types.AttributeValueMemberN).Value)
		return vi > vj
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func (m *fakeDDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	baseURI := params.Key["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Key["version"].(*types.AttributeValueMemberN).Value

	if item, ok := m.items[baseURI+":"+version]; ok {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *fakeDDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.Key["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Key["version"].(*types.AttributeValueMemberN).Value
	delete(m.items, baseURI+":"+version)
	return &dynamodb.DeleteItemOutput{}, nil
}

func newTestDDBCommitStore(ddb *fakeDDBClient, baseURI string) *DDBCommitStore {
	s3Store := NewStore(newFakeS3Client(), "test-bucket", "test/")
	return NewDDBCommitStore(s3Store, ddb, "symgo-commits", baseURI)
}

func readPointer(t *testing.T, store *DDBCommitStore) string {
	t.Helper()

	data, err := archive.ReadAll(context.Background(), store, archive.CurrentPointer)
	require.NoError(t, err)
	return string(data)
}

func TestDDBCommitStore_FirstCommit(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	err := store.Put(ctx, archive.CurrentPointer, []byte("snapshot-00001.symgo"))
	require.NoError(t, err)

	assert.Equal(t, "snapshot-00001.symgo", readPointer(t, store))
}

func TestDDBCommitStore_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	for i := 1; i <= 3; i++ {
		err := store.Put(ctx, archive.CurrentPointer, []byte(fmt.Sprintf("snapshot-%05d.symgo", i)))
		require.NoError(t, err)
	}

	assert.Equal(t, "snapshot-00003.symgo", readPointer(t, store))
}

func TestDDBCommitStore_CreateCommitsOnClose(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	wb, err := store.Create(ctx, archive.CurrentPointer)
	require.NoError(t, err)

	_, err = wb.Write([]byte("snapshot-00042.symgo"))
	require.NoError(t, err)

	// The pointer must not advance before Close.
	_, err = store.Open(ctx, archive.CurrentPointer)
	assert.ErrorIs(t, err, archive.ErrNotFound)

	require.NoError(t, wb.Close())
	assert.Equal(t, "snapshot-00042.symgo", readPointer(t, store))
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, archive.CurrentPointer, []byte("snapshot-00001.symgo")))

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	conflicts := 0

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := store.Put(ctx, archive.CurrentPointer, []byte(fmt.Sprintf("snapshot-%05d.symgo", id+2)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConcurrentModification):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()
	assert.Greater(t, successes, 0, "at least one writer should succeed")
	t.Logf("successes: %d, conflicts: %d", successes, conflicts)
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	_, err := store.Open(ctx, archive.CurrentPointer)
	require.ErrorIs(t, err, archive.ErrNotFound)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDBClient()

	store1 := newTestDDBCommitStore(ddb, "s3://bucket-a/path/")
	store2 := newTestDDBCommitStore(ddb, "s3://bucket-b/path/")

	require.NoError(t, store1.Put(ctx, archive.CurrentPointer, []byte("snapshot-a.symgo")))
	require.NoError(t, store2.Put(ctx, archive.CurrentPointer, []byte("snapshot-b.symgo")))

	assert.Equal(t, "snapshot-a.symgo", readPointer(t, store1))
	assert.Equal(t, "snapshot-b.symgo", readPointer(t, store2))
}

func TestDDBCommitStore_DelegatesBlobOps(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDBClient()
	s3Client := newFakeS3Client()
	s3Store := NewStore(s3Client, "test-bucket", "test/")
	store := NewDDBCommitStore(s3Store, ddb, "symgo-commits", "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, "snapshot-00001.symgo", []byte("payload")))
	assert.Equal(t, []byte("payload"), s3Client.objects["test/snapshot-00001.symgo"])

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshot-00001.symgo"}, names)

	require.NoError(t, store.Delete(ctx, "snapshot-00001.symgo"))
	assert.Empty(t, s3Client.objects)
}
