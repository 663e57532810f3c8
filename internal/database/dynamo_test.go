package database

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
)

// fakeDynamo serves canned responses and records requests.
type fakeDynamo struct {
	items       map[string]types.AttributeValue
	updateErr   error
	scanPages   [][]map[string]types.AttributeValue
	queryPages  [][]map[string]types.AttributeValue
	puts        []*dynamodb.PutItemInput
	updates     []*dynamodb.UpdateItemInput
	scans       []*dynamodb.ScanInput
	queryCalls  int
	describeErr error
}

func (f *fakeDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	i := f.queryCalls
	f.queryCalls++
	out := &dynamodb.QueryOutput{Items: f.queryPages[i]}
	if i < len(f.queryPages)-1 {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"id": str("page")}
	}
	return out, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	i := len(f.scans)
	cp := *in
	f.scans = append(f.scans, &cp)
	out := &dynamodb.ScanOutput{Items: f.scanPages[i]}
	if i < len(f.scanPages)-1 {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"id": str("page")}
	}
	return out, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, _ *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, f.describeErr
}

var testTables = DynamoTables{Chats: "Chats", Messages: "Messages", Users: "Users", ChatRequests: "ChatRequests"}

func marshal(t *testing.T, v any) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return av
}

func TestDynamoStore_GetChat(t *testing.T) {
	f := &fakeDynamo{}
	s := NewDynamoStore(f, testTables)

	_, err := s.GetChat(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	f.items = marshal(t, models.Chat{ID: "c1", Participants: []string{"a", "b"}, CreatedAt: time.Now().UTC()})
	chat, err := s.GetChat(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, chat.Participants)
}

func TestDynamoStore_AddMessage(t *testing.T) {
	f := &fakeDynamo{}
	s := NewDynamoStore(f, testTables)

	msg := &models.Message{ChatID: "c1", UserID: "a", Text: "hello", Timestamp: 42}
	require.NoError(t, s.AddMessage(context.Background(), msg))
	assert.NotEmpty(t, msg.ID)

	require.Len(t, f.updates, 1)
	up := f.updates[0]
	assert.Equal(t, "Chats", aws.ToString(up.TableName))
	assert.Equal(t, "timestamp", up.ExpressionAttributeNames["#ts"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "42"}, up.ExpressionAttributeValues[":t"])

	require.Len(t, f.puts, 1)
	assert.Equal(t, "Messages", aws.ToString(f.puts[0].TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "c1"}, f.puts[0].Item["chatId"])
}

func TestDynamoStore_AddMessageToMissingChat(t *testing.T) {
	f := &fakeDynamo{updateErr: &types.ConditionalCheckFailedException{Message: aws.String("nope")}}
	s := NewDynamoStore(f, testTables)

	err := s.AddMessage(context.Background(), &models.Message{ChatID: "gone", Text: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.puts)

	assert.ErrorIs(t, s.MarkChatRead(context.Background(), "gone"), ErrNotFound)
}

func TestDynamoStore_ListChatsPaginatesAndSorts(t *testing.T) {
	f := &fakeDynamo{scanPages: [][]map[string]types.AttributeValue{
		{marshal(t, models.Chat{ID: "old", Participants: []string{"u", "x"}, Timestamp: 1})},
		{marshal(t, models.Chat{ID: "new", Participants: []string{"u", "y"}, Timestamp: 9})},
	}}
	s := NewDynamoStore(f, testTables)

	chats, err := s.ListChats(context.Background(), "u")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "new", chats[0].ID)

	require.Len(t, f.scans, 2)
	assert.Empty(t, f.scans[0].ExclusiveStartKey)
	assert.NotEmpty(t, f.scans[1].ExclusiveStartKey)
	assert.Equal(t, "contains(participants, :u)", aws.ToString(f.scans[0].FilterExpression))
}

func TestDynamoStore_ListMessages(t *testing.T) {
	f := &fakeDynamo{queryPages: [][]map[string]types.AttributeValue{
		{
			marshal(t, models.Message{ID: "m3", ChatID: "c", Timestamp: 3}),
			marshal(t, models.Message{ID: "m1", ChatID: "c", Timestamp: 1}),
		},
		{marshal(t, models.Message{ID: "m2", ChatID: "c", Timestamp: 2})},
	}}
	s := NewDynamoStore(f, testTables)

	msgs, err := s.ListMessages(context.Background(), "c", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[0].ID)
	assert.Equal(t, "m3", msgs[1].ID)
	assert.Equal(t, 2, f.queryCalls)
}

func TestDynamoStore_UpsertProfile(t *testing.T) {
	f := &fakeDynamo{}
	s := NewDynamoStore(f, testTables)

	now := time.Now().UTC()
	require.NoError(t, s.UpsertProfile(context.Background(), &models.UserProfile{
		UserID: "u1", Name: "Mina", Country: "KR", Language: "ko", CreatedAt: now, UpdatedAt: now,
	}))
	require.Len(t, f.updates, 1)
	assert.Contains(t, aws.ToString(f.updates[0].UpdateExpression), "if_not_exists(createdAt, :cr)")
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u1"}, f.updates[0].Key["userId"])
}
