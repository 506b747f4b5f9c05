package factory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var errNilDocumentClient = errors.New("factory: document client is nil")

// DocumentClient reads and writes DynamoDB items as Go values. It has no configuration of its
// own; Unwrap exposes the DynamoDB client it delegates to.
type DocumentClient struct {
	service *Client[*dynamodb.Client]
}

func newDocumentClient(cfg *Config) (*DocumentClient, error) {
	api := dynamodb.NewFromConfig(cfg.AWS, func(o *dynamodb.Options) { dynamoDBSigner(o, cfg.Clock) })

	return &DocumentClient{
		service: &Client[*dynamodb.Client]{service: dynamoDBName, api: api, config: cfg},
	}, nil
}

// Service implements Instance.
func (d *DocumentClient) Service() string {
	return documentName
}

// Config implements Instance. Document clients report no configuration of their own.
func (d *DocumentClient) Config() *Config {
	return nil
}

// Unwrap implements clock.Unwrapper.
func (d *DocumentClient) Unwrap() any {
	if d == nil {
		return nil
	}

	return d.service
}

// DynamoDB returns the wrapped DynamoDB client.
func (d *DocumentClient) DynamoDB() *Client[*dynamodb.Client] {
	if d == nil {
		return nil
	}

	return d.service
}

// PutItem marshals item with attributevalue and writes it to table.
func (d *DocumentClient) PutItem(ctx context.Context, table string, item any) error {
	if d == nil || d.service == nil {
		return errNilDocumentClient
	}

	attributes, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	_, err = d.service.API().PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      attributes,
	})
	if err != nil {
		return fmt.Errorf("put item into %s: %w", table, err)
	}

	return nil
}

// GetItem looks up key in table and unmarshals the item into out. It reports false when the
// item does not exist.
func (d *DocumentClient) GetItem(ctx context.Context, table string, key, out any) (bool, error) {
	if d == nil || d.service == nil {
		return false, errNilDocumentClient
	}

	attributes, err := attributevalue.MarshalMap(key)
	if err != nil {
		return false, fmt.Errorf("marshal key: %w", err)
	}

	response, err := d.service.API().GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       attributes,
	})
	if err != nil {
		return false, fmt.Errorf("get item from %s: %w", table, err)
	}

	if len(response.Item) == 0 {
		return false, nil
	}

	err = attributevalue.UnmarshalMap(response.Item, out)
	if err != nil {
		return false, fmt.Errorf("unmarshal item: %w", err)
	}

	return true, nil
}
