package dynamodb

import (
	"context"
	"errors"

	"emperror.dev/emperror"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/xmidt-org/folio/store"
	"github.com/xmidt-org/folio/store/db/metric"
	"go.uber.org/zap"
)

const (
	DynamoDB = "dynamo"

	defaultTable      = "folio"
	defaultMaxRetries = 3
)

var errNoRegion = errors.New("dynamodb region is required")

type Config struct {
	// Table holding the blobs. Partition key "bucket", sort key "id".
	Table      string
	Endpoint   string
	Region     string
	MaxRetries int
	AccessKey  string
	SecretKey  string
}

// DynamoClient is a store.Blobs backed by a dynamodb table.
type DynamoClient struct {
	s service
}

var _ store.Blobs = (*DynamoClient)(nil)

// NewDynamoDB builds the aws client from config and returns the blob backend.
func NewDynamoDB(config Config, measures metric.Measures, logger *zap.Logger) (*DynamoClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	validateConfig(&config)
	if config.Region == "" {
		return nil, errNoRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
		awsconfig.WithRetryMaxAttempts(config.MaxRetries),
	}
	if config.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, emperror.WrapWith(err, "loading aws config failed", "region", config.Region)
	}

	c := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})

	svc := newService(c, config.Table)
	svc = newInstrumentingService(measures, svc)
	svc = newLoggingService(logger, svc)
	return &DynamoClient{s: svc}, nil
}

func (d *DynamoClient) Put(ctx context.Context, key string, data []byte) error {
	_, err := d.s.Put(ctx, key, data)
	return err
}

func (d *DynamoClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, found, _, err := d.s.Get(ctx, key)
	return data, found, err
}

func (d *DynamoClient) Delete(ctx context.Context, key string) error {
	_, err := d.s.Delete(ctx, key)
	return err
}

func (d *DynamoClient) List(ctx context.Context, prefix string, max int) ([]string, error) {
	keys, _, err := d.s.List(ctx, prefix, max)
	return keys, err
}

func validateConfig(config *Config) {
	if config.Table == "" {
		config.Table = defaultTable
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}
}
