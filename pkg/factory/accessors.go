package factory

import (
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

// DynamoDB returns the memoized DynamoDB client for opts.
func (f *Factory) DynamoDB(opts Options) (*Client[*dynamodb.Client], error) {
	return Build(f, DynamoDB, opts)
}

// Document returns the memoized DynamoDB document client for opts.
func (f *Factory) Document(opts Options) (*DocumentClient, error) {
	return Build(f, Document, opts)
}

// EC2 returns the memoized EC2 client for opts.
func (f *Factory) EC2(opts Options) (*Client[*ec2.Client], error) {
	return Build(f, EC2, opts)
}

// ECR returns the memoized ECR client for opts.
func (f *Factory) ECR(opts Options) (*Client[*ecr.Client], error) {
	return Build(f, ECR, opts)
}

// IAM returns the memoized IAM client for opts.
func (f *Factory) IAM(opts Options) (*Client[*iam.Client], error) {
	return Build(f, IAM, opts)
}

// S3 returns the memoized S3 client for opts.
func (f *Factory) S3(opts Options) (*Client[*s3.Client], error) {
	return Build(f, S3, opts)
}

// SecretsManager returns the memoized Secrets Manager client for opts.
func (f *Factory) SecretsManager(opts Options) (*Client[*secretsmanager.Client], error) {
	return Build(f, SecretsManager, opts)
}

// SSM returns the memoized SSM client for opts.
func (f *Factory) SSM(opts Options) (*Client[*ssm.Client], error) {
	return Build(f, SSM, opts)
}

// STS returns the memoized STS client for opts.
func (f *Factory) STS(opts Options) (*Client[*sts.Client], error) {
	return Build(f, STS, opts)
}

// OCIMonitoring returns the memoized OCI Monitoring client for opts.
func (f *Factory) OCIMonitoring(opts Options) (*Client[*monitoring.MonitoringClient], error) {
	return Build(f, OCIMonitoring, opts)
}
