// Package cache exposes one lazily built client per service on top of a factory.Factory.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"aws-client-factory/pkg/factory"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/oracle/oci-go-sdk/v65/monitoring"
)

var errUnexpectedInstance = errors.New("cache: unexpected instance type")

// holder records the first instance built for a service.
type holder struct {
	built    bool
	instance factory.Instance
}

// Cache hands out one client per service, built with the factory defaults only.
//
// Every access goes through the factory, which returns its memoized instance; the holders
// record what was built but do not short-circuit later accesses.
type Cache struct {
	factory *factory.Factory

	mu      sync.Mutex
	holders map[string]*holder
}

// New builds a Factory from settings and wraps it.
func New(ctx context.Context, settings factory.Settings) (*Cache, error) {
	built, err := factory.New(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("build client factory: %w", err)
	}

	return NewFromFactory(built), nil
}

// NewFromFactory wraps an existing Factory.
func NewFromFactory(clients *factory.Factory) *Cache {
	holders := make(map[string]*holder)
	for _, name := range factory.Services() {
		holders[name] = &holder{}
	}

	return &Cache{factory: clients, holders: holders}
}

// Factory returns the underlying Factory.
func (c *Cache) Factory() *factory.Factory {
	return c.factory
}

// GetOrBuild returns the client for the named service, building it on first access.
//
//nolint:ireturn // typed accessors narrow the result.
func (c *Cache) GetOrBuild(service string) (factory.Instance, error) {
	c.mu.Lock()
	slot, ok := c.holders[service]
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", factory.ErrUnknownService, service)
	}

	instance, err := c.factory.Client(service, factory.Options{})
	if err != nil {
		return nil, fmt.Errorf("build %s client: %w", service, err)
	}

	c.mu.Lock()
	if !slot.built {
		slot.built = true
		slot.instance = instance
	}
	c.mu.Unlock()

	return instance, nil
}

// Instantiated returns the services accessed so far and the instance recorded for each.
func (c *Cache) Instantiated() map[string]factory.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()

	instantiated := make(map[string]factory.Instance)

	for name, slot := range c.holders {
		if slot.built {
			instantiated[name] = slot.instance
		}
	}

	return instantiated
}

func get[T factory.Instance](c *Cache, svc factory.Service[T]) (T, error) {
	var zero T

	instance, err := c.GetOrBuild(svc.Name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", errUnexpectedInstance, svc.Name, instance)
	}

	return typed, nil
}

// DynamoDB returns the cached DynamoDB client.
func (c *Cache) DynamoDB() (*factory.Client[*dynamodb.Client], error) {
	return get(c, factory.DynamoDB)
}

// Document returns the cached DynamoDB document client.
func (c *Cache) Document() (*factory.DocumentClient, error) {
	return get(c, factory.Document)
}

// EC2 returns the cached EC2 client.
func (c *Cache) EC2() (*factory.Client[*ec2.Client], error) {
	return get(c, factory.EC2)
}

// ECR returns the cached ECR client.
func (c *Cache) ECR() (*factory.Client[*ecr.Client], error) {
	return get(c, factory.ECR)
}

// IAM returns the cached IAM client.
func (c *Cache) IAM() (*factory.Client[*iam.Client], error) {
	return get(c, factory.IAM)
}

// S3 returns the cached S3 client.
func (c *Cache) S3() (*factory.Client[*s3.Client], error) {
	return get(c, factory.S3)
}

// SecretsManager returns the cached Secrets Manager client.
func (c *Cache) SecretsManager() (*factory.Client[*secretsmanager.Client], error) {
	return get(c, factory.SecretsManager)
}

// SSM returns the cached SSM client.
func (c *Cache) SSM() (*factory.Client[*ssm.Client], error) {
	return get(c, factory.SSM)
}

// STS returns the cached STS client.
func (c *Cache) STS() (*factory.Client[*sts.Client], error) {
	return get(c, factory.STS)
}

// OCIMonitoring returns the cached OCI Monitoring client.
func (c *Cache) OCIMonitoring() (*factory.Client[*monitoring.MonitoringClient], error) {
	return get(c, factory.OCIMonitoring)
}
