// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tfctl/tfset/internal/log"
)

// options holds optional overrides for AWS config loading and client
// construction.
type options struct {
	profile   string
	region    string
	endpoint  string
	pathStyle bool
	retryer   func() awsv2.Retryer
}

// Option customizes how the S3 client is built. With no options the shell
// environment and shared config chain are inherited (AWS_PROFILE,
// ~/.aws/config, ~/.aws/credentials, IMDS).
type Option func(*options)

func apply(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LoadAWSConfig loads SDK v2 config, honouring the profile, region and retryer
// options.
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	o := apply(opts)
	log.Debugf("loading aws config: profile=%s, region=%s", o.profile, o.region)

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.retryer != nil {
		loadOpts = append(loadOpts, config.WithRetryer(o.retryer))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return awsv2.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

// NewS3 loads config and returns an S3 client. Endpoint and path style are
// applied to the client so S3-compatible services such as MinIO work.
func NewS3(ctx context.Context, opts ...Option) (*s3v2.Client, error) {
	cfg, err := LoadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	o := apply(opts)
	client := s3v2.NewFromConfig(cfg, s3Options(o)...)
	log.Debugf("s3 client created: endpoint=%s, pathStyle=%t", o.endpoint, o.pathStyle)
	return client, nil
}

func s3Options(o options) []func(*s3v2.Options) {
	var fns []func(*s3v2.Options)
	if o.endpoint != "" {
		endpoint := o.endpoint
		fns = append(fns, func(so *s3v2.Options) {
			so.BaseEndpoint = awsv2.String(endpoint)
		})
	}
	if o.pathStyle {
		fns = append(fns, func(so *s3v2.Options) {
			so.UsePathStyle = true
		})
	}
	return fns
}

// WithProfile sets the shared config profile.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion overrides the region chain.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the client at a custom S3 endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithPathStyle forces path-style bucket addressing.
func WithPathStyle(pathStyle bool) Option {
	return func(o *options) { o.pathStyle = pathStyle }
}

// WithRetryer injects a custom retryer; SDK defaults apply otherwise.
func WithRetryer(newRetryer func() awsv2.Retryer) Option {
	return func(o *options) { o.retryer = newRetryer }
}
