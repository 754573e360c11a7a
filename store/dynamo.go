package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type ClientConfig struct {
	Region          string
	Endpoint        string // optional, for dynamodb-local
	AccessKeyID     string // optional, static credentials
	SecretAccessKey string
	Tables          Tables
}

// Client wraps the DynamoDB client with the handful of generic
// document operations the repositories need.
type Client struct {
	DB     *dynamodb.Client
	Tables Tables
}

func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Region == "" {
		return nil, errors.New("invalid store configuration: region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	db := dynamodb.NewFromConfig(sdkCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Client{DB: db, Tables: cfg.Tables}, nil
}

// GetItem loads a single document into dst. Returns ErrItemNotFound
// when the key is absent.
func (c *Client) GetItem(ctx context.Context, table string, key map[string]types.AttributeValue, dst interface{}) error {
	out, err := c.DB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to get item from table %q: %w", table, err)
	}
	if out.Item == nil {
		return ErrItemNotFound
	}
	if err := attributevalue.UnmarshalMap(out.Item, dst); err != nil {
		return fmt.Errorf("failed to unmarshal item from table %q: %w", table, err)
	}
	return nil
}

// PutItem marshals and writes a whole document, replacing any existing
// one under the same key.
func (c *Client) PutItem(ctx context.Context, table string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for table %q: %w", table, err)
	}
	_, err = c.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in table %q: %w", table, err)
	}
	return nil
}

// UpdateFields applies a shallow SET of the given fields on one
// document. Nested objects are replaced whole, never merged.
func (c *Client) UpdateFields(ctx context.Context, table string, key map[string]types.AttributeValue, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return errors.New("update failed: no fields supplied")
	}

	var sets []string
	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))
	i := 0
	for field, value := range fields {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal field %q: %w", field, err)
		}
		nameRef := fmt.Sprintf("#f%d", i)
		valueRef := fmt.Sprintf(":v%d", i)
		names[nameRef] = field
		values[valueRef] = av
		sets = append(sets, nameRef+" = "+valueRef)
		i++
	}

	_, err := c.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("failed to update item in table %q: %w", table, err)
	}
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, table string, key map[string]types.AttributeValue) error {
	_, err := c.DB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from table %q: %w", table, err)
	}
	return nil
}

// QueryPartition fetches every item sharing a partition key into dst
// (a pointer to a slice).
func (c *Client) QueryPartition(ctx context.Context, table, keyName, keyValue string, dst interface{}) error {
	out, err := c.DB.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": keyName},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: keyValue}},
	})
	if err != nil {
		return fmt.Errorf("failed to query table %q: %w", table, err)
	}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, dst); err != nil {
		return fmt.Errorf("failed to unmarshal query result from table %q: %w", table, err)
	}
	return nil
}

// QueryIndex fetches every item matching a key value on a GSI.
func (c *Client) QueryIndex(ctx context.Context, table, index, keyName, keyValue string, dst interface{}) error {
	out, err := c.DB.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": keyName},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: keyValue}},
	})
	if err != nil {
		return fmt.Errorf("failed to query index %q on table %q: %w", index, table, err)
	}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, dst); err != nil {
		return fmt.Errorf("failed to unmarshal index result from table %q: %w", table, err)
	}
	return nil
}

// ScanFilter scans a table with an arbitrary filter expression into
// dst. The document model keeps these scans small (matches and
// tournaments per user), so a full scan with a filter is acceptable
// here the same way it is in the source system's queries.
func (c *Client) ScanFilter(ctx context.Context, table, filterExpression string, names map[string]string, values map[string]types.AttributeValue, dst interface{}) error {
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(table),
		FilterExpression:          aws.String(filterExpression),
		ExpressionAttributeValues: values,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	out, err := c.DB.Scan(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to scan table %q: %w", table, err)
	}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, dst); err != nil {
		return fmt.Errorf("failed to unmarshal scan result from table %q: %w", table, err)
	}
	return nil
}

// StringKey builds the common single-attribute string key.
func StringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// CompositeKey builds a two-attribute string key (partition + sort).
func CompositeKey(pkName, pkValue, skName, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkName: &types.AttributeValueMemberS{Value: pkValue},
		skName: &types.AttributeValueMemberS{Value: skValue},
	}
}
