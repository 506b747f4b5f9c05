package factory

import (
	"slices"

	"aws-client-factory/pkg/clock"
	"aws-client-factory/pkg/oci"
	"github.com/aws/aws-sdk-go-v2/aws"
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

const (
	dynamoDBName      = "DynamoDB"
	documentName      = "DocumentClient"
	ociMonitoringName = "OCIMonitoring"
)

// Provider identifies the SDK family a service belongs to.
type Provider int

// Supported SDK families.
const (
	ProviderAWS Provider = iota
	ProviderOCI
)

// String returns a human-readable provider name.
func (p Provider) String() string {
	switch p {
	case ProviderAWS:
		return "aws"
	case ProviderOCI:
		return "oci"
	default:
		return "unknown"
	}
}

// Service describes one constructible client: its registered name, its SDK family and how to
// build it from a resolved Config.
type Service[T Instance] struct {
	Name     string
	Provider Provider

	build func(cfg *Config) (T, error)
}

type descriptor interface {
	serviceName() string
	provider() Provider
	instantiate(cfg *Config) (Instance, error)
}

func (s Service[T]) serviceName() string { return s.Name }

func (s Service[T]) provider() Provider { return s.Provider }

func (s Service[T]) instantiate(cfg *Config) (Instance, error) {
	return s.build(cfg)
}

// awsService registers an aws-sdk-go-v2 client. withSigner installs the clock-corrected signer
// into the service's own Options type.
func awsService[T, O any](
	name string,
	newFromConfig func(aws.Config, ...func(*O)) T,
	withSigner func(*O, *clock.Setting),
) Service[*Client[T]] {
	return Service[*Client[T]]{
		Name:     name,
		Provider: ProviderAWS,
		build: func(cfg *Config) (*Client[T], error) {
			api := newFromConfig(cfg.AWS, func(o *O) { withSigner(o, cfg.Clock) })

			return &Client[T]{service: name, api: api, config: cfg}, nil
		},
	}
}

// dynamoDBSigner and its siblings wrap the service's default signer with the clock-corrected
// one. Options types differ per service, so each needs its own setter.
func dynamoDBSigner(o *dynamodb.Options, s *clock.Setting) { o.HTTPSignerV4 = s.Signer(o.HTTPSignerV4) }

func ec2Signer(o *ec2.Options, s *clock.Setting) { o.HTTPSignerV4 = s.Signer(o.HTTPSignerV4) }

func ecrSigner(o *ecr.Options, s *clock.Setting) { o.HTTPSignerV4 = s.Signer(o.HTTPSignerV4) }

func iamSigner(o *iam.Options, s *clock.Setting) { o.HTTPSignerV4 = s.Signer(o.HTTPSignerV4) }

func s3Signer(o *s3.Options, s *clock.Setting) { o.HTTPSignerV4 = s.Signer(o.HTTPSignerV4) }

func secretsManagerSigner(o *secretsmanager.Options, s *clock.Setting) {
	o.HTTPSignerV4 = s.Signer(o.HTTPSignerV4)
}

func ssmSigner(o *ssm.Options, s *clock.Setting) { o.HTTPSignerV4 = s.Signer(o.HTTPSignerV4) }

func stsSigner(o *sts.Options, s *clock.Setting) { o.HTTPSignerV4 = s.Signer(o.HTTPSignerV4) }

func newOCIMonitoring(cfg *Config) (*Client[*monitoring.MonitoringClient], error) {
	api, err := oci.NewMonitoringClient(cfg.ociProvider, oci.Options{
		Region:   cfg.Options.Region,
		Endpoint: cfg.Options.Endpoint,
		Profile:  cfg.Options.OCIProfile,
		Auth:     cfg.Options.OCIAuth,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped with the service name by the factory.
	}

	return &Client[*monitoring.MonitoringClient]{service: ociMonitoringName, api: api, config: cfg}, nil
}

// Known services.
//
//nolint:gochecknoglobals // fixed service table.
var (
	DynamoDB       = awsService(dynamoDBName, dynamodb.NewFromConfig, dynamoDBSigner)
	EC2            = awsService("EC2", ec2.NewFromConfig, ec2Signer)
	ECR            = awsService("ECR", ecr.NewFromConfig, ecrSigner)
	IAM            = awsService("IAM", iam.NewFromConfig, iamSigner)
	S3             = awsService("S3", s3.NewFromConfig, s3Signer)
	SecretsManager = awsService("SecretsManager", secretsmanager.NewFromConfig, secretsManagerSigner)
	SSM            = awsService("SSM", ssm.NewFromConfig, ssmSigner)
	STS            = awsService("STS", sts.NewFromConfig, stsSigner)

	Document = Service[*DocumentClient]{
		Name:     documentName,
		Provider: ProviderAWS,
		build:    newDocumentClient,
	}

	OCIMonitoring = Service[*Client[*monitoring.MonitoringClient]]{
		Name:     ociMonitoringName,
		Provider: ProviderOCI,
		build:    newOCIMonitoring,
	}
)

//nolint:gochecknoglobals // built once from the fixed service table.
var registry = map[string]descriptor{
	DynamoDB.Name:       DynamoDB,
	Document.Name:       Document,
	EC2.Name:            EC2,
	ECR.Name:            ECR,
	IAM.Name:            IAM,
	S3.Name:             S3,
	SecretsManager.Name: SecretsManager,
	SSM.Name:            SSM,
	STS.Name:            STS,
	OCIMonitoring.Name:  OCIMonitoring,
}

// Services returns the registered service names in sorted order.
func Services() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
