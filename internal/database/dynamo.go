package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoTables names the tables. Key schemas:
//
//	Chats        id (HASH)
//	Messages     chatId (HASH), id (RANGE)
//	Users        userId (HASH)
//	ChatRequests id (HASH)
type DynamoTables struct {
	Chats        string
	Messages     string
	Users        string
	ChatRequests string
}

// DynamoStore implements Store on DynamoDB.
type DynamoStore struct {
	api    DynamoAPI
	tables DynamoTables
}

func NewDynamoStore(api DynamoAPI, tables DynamoTables) *DynamoStore {
	return &DynamoStore{api: api, tables: tables}
}

func str(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }
func num(v int64) types.AttributeValue  { return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)} }

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (s *DynamoStore) put(ctx context.Context, table string, item any, condition string) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item for %s: %w", table, err)
	}
	in := &dynamodb.PutItemInput{TableName: aws.String(table), Item: av}
	if condition != "" {
		in.ConditionExpression = aws.String(condition)
	}
	if _, err := s.api.PutItem(ctx, in); err != nil {
		if isConditionFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("put item in %s: %w", table, err)
	}
	return nil
}

func (s *DynamoStore) get(ctx context.Context, table string, key map[string]types.AttributeValue, out any) error {
	res, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(table), Key: key})
	if err != nil {
		return fmt.Errorf("get item from %s: %w", table, err)
	}
	if len(res.Item) == 0 {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("unmarshal item from %s: %w", table, err)
	}
	return nil
}

// scan reads every page matching the filter.
func (s *DynamoStore) scan(ctx context.Context, in *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		res, err := s.api.Scan(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", aws.ToString(in.TableName), err)
		}
		items = append(items, res.Items...)
		if len(res.LastEvaluatedKey) == 0 {
			return items, nil
		}
		in.ExclusiveStartKey = res.LastEvaluatedKey
	}
}

func (s *DynamoStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	ensureID(&chat.ID)
	return s.put(ctx, s.tables.Chats, chat, "")
}

func (s *DynamoStore) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := s.get(ctx, s.tables.Chats, map[string]types.AttributeValue{"id": str(id)}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *DynamoStore) ListChats(ctx context.Context, userID string) ([]models.Chat, error) {
	items, err := s.scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(s.tables.Chats),
		FilterExpression:          aws.String("contains(participants, :u)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":u": str(userID)},
	})
	if err != nil {
		return nil, err
	}
	chats := []models.Chat{}
	if err := attributevalue.UnmarshalListOfMaps(items, &chats); err != nil {
		return nil, fmt.Errorf("unmarshal chats: %w", err)
	}
	sortChats(chats)
	return chats, nil
}

func (s *DynamoStore) MarkChatRead(ctx context.Context, chatID string) error {
	_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tables.Chats),
		Key:                       map[string]types.AttributeValue{"id": str(chatID)},
		UpdateExpression:          aws.String("SET unread = :zero"),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":zero": num(0)},
	})
	if isConditionFailed(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mark chat read: %w", err)
	}
	return nil
}

func (s *DynamoStore) AddMessage(ctx context.Context, msg *models.Message) error {
	ensureID(&msg.ID)
	_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.tables.Chats),
		Key:                      map[string]types.AttributeValue{"id": str(msg.ChatID)},
		UpdateExpression:         aws.String("SET lastMessage = :m, #ts = :t ADD unread :one"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#ts": "timestamp"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m":   str(msg.Text),
			":t":   num(msg.Timestamp),
			":one": num(1),
		},
	})
	if isConditionFailed(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update chat: %w", err)
	}
	return s.put(ctx, s.tables.Messages, msg, "")
}

func (s *DynamoStore) ListMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tables.Messages),
		KeyConditionExpression:    aws.String("chatId = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":c": str(chatID)},
	}
	var items []map[string]types.AttributeValue
	for {
		res, err := s.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("query messages: %w", err)
		}
		items = append(items, res.Items...)
		if len(res.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = res.LastEvaluatedKey
	}
	msgs := []models.Message{}
	if err := attributevalue.UnmarshalListOfMaps(items, &msgs); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	return tailMessages(msgs, limit), nil
}

func (s *DynamoStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.get(ctx, s.tables.Users, map[string]types.AttributeValue{"userId": str(userID)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *DynamoStore) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	created, err := attributevalue.Marshal(profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("marshal createdAt: %w", err)
	}
	updated, err := attributevalue.Marshal(profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("marshal updatedAt: %w", err)
	}
	_, err = s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.tables.Users),
		Key:              map[string]types.AttributeValue{"userId": str(profile.UserID)},
		UpdateExpression: aws.String("SET #n = :n, country = :c, #l = :l, updatedAt = :u, createdAt = if_not_exists(createdAt, :cr)"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
			"#l": "language",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":n":  str(profile.Name),
			":c":  str(profile.Country),
			":l":  str(profile.Language),
			":u":  updated,
			":cr": created,
		},
	})
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *DynamoStore) CreateChatRequest(ctx context.Context, req *models.ChatRequest) error {
	ensureID(&req.ID)
	return s.put(ctx, s.tables.ChatRequests, req, "")
}

func (s *DynamoStore) GetChatRequest(ctx context.Context, id string) (*models.ChatRequest, error) {
	var r models.ChatRequest
	if err := s.get(ctx, s.tables.ChatRequests, map[string]types.AttributeValue{"id": str(id)}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *DynamoStore) ListPendingChatRequests(ctx context.Context, toUserID string) ([]models.ChatRequest, error) {
	items, err := s.scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(s.tables.ChatRequests),
		FilterExpression:         aws.String("toUserId = :u AND #st = :p"),
		ExpressionAttributeNames: map[string]string{"#st": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": str(toUserID),
			":p": str(models.RequestPending),
		},
	})
	if err != nil {
		return nil, err
	}
	reqs := []models.ChatRequest{}
	if err := attributevalue.UnmarshalListOfMaps(items, &reqs); err != nil {
		return nil, fmt.Errorf("unmarshal chat requests: %w", err)
	}
	sortRequests(reqs)
	return reqs, nil
}

func (s *DynamoStore) UpdateChatRequest(ctx context.Context, req *models.ChatRequest) error {
	return s.put(ctx, s.tables.ChatRequests, req, "attribute_exists(id)")
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tables.Chats)})
	return err
}

func (s *DynamoStore) Close(context.Context) error { return nil }
