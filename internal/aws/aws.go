package aws

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const kubernetesTokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"

// LoadAWSConfig loads the default credential chain used by the KMS signer.
func LoadAWSConfig(ctx context.Context, regionOverride string) (aws.Config, error) {
	var options []func(*config.LoadOptions) error

	// Only use profile if we're not in a K8s environment
	if !isInKubernetes() {
		options = append(options, config.WithSharedConfigProfile(getProfile()))
	}

	if regionOverride != "" {
		options = append(options, config.WithRegion(regionOverride))
	}

	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "failed to load AWS config")
	}
	return cfg, nil
}

func isInKubernetes() bool {
	_, err := os.Stat(kubernetesTokenPath)
	return err == nil
}

func getProfile() string {
	if profile := os.Getenv("AWS_PROFILE"); profile != "" {
		return profile
	}
	return "default"
}

type ICallerIdentityClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

func GetCallerIdentity(ctx context.Context, cfg aws.Config) (*sts.GetCallerIdentityOutput, error) {
	return getCallerIdentity(ctx, sts.NewFromConfig(cfg))
}

func getCallerIdentity(ctx context.Context, client ICallerIdentityClient) (*sts.GetCallerIdentityOutput, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get caller identity")
	}
	return out, nil
}

// LogCallerIdentity logs which principal will be used for KMS calls. Failures
// are logged and otherwise ignored since KMS reports its own auth errors.
func LogCallerIdentity(ctx context.Context, client ICallerIdentityClient, logger *zap.Logger) {
	out, err := getCallerIdentity(ctx, client)
	if err != nil {
		logger.Sugar().Warnw("Unable to resolve AWS caller identity", "error", err)
		return
	}
	logger.Sugar().Infow("Using AWS identity",
		"account", aws.ToString(out.Account),
		"arn", aws.ToString(out.Arn),
	)
}
