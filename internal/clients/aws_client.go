package clients

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var (
	awsCfg  aws.Config
	awsErr  error
	awsOnce sync.Once
)

type AWSConfig struct {
	Region string
	// Endpoint overrides the service endpoint, e.g. DynamoDB Local.
	Endpoint string
}

func GetAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	awsOnce.Do(func() {
		slog.Info("[AWSClient] Initializing AWS Config...", slog.String("region", region))
		awsCfg, awsErr = config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if awsErr != nil {
			slog.Error("[AWSClient] Failed to load AWS config",
				slog.String("error", awsErr.Error()))
			return
		}
		slog.Info("[AWSClient] AWS Config Initialized")
	})

	return awsCfg, awsErr
}

func GetDynamoDBClient(ctx context.Context, cfg AWSConfig) (*dynamodb.Client, error) {
	base, err := GetAWSConfig(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(base, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
