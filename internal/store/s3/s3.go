// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package s3 stores settings in an S3 bucket, one YAML object per top-level key.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/tfset/internal/log"
	"github.com/tfctl/tfset/internal/tree"
)

const suffix = ".yaml"

// API is the subset of the S3 client the store needs.
type API interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3v2.DeleteObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.DeleteObjectOutput, error)
	s3v2.ListObjectsV2APIClient
}

// Store is a store.Store over a bucket and key prefix.
type Store struct {
	client API
	bucket string
	prefix string
}

// New returns a Store writing under prefix in bucket.
func New(client API, bucket, prefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// objectKey maps a settings key to its object name.
func (s *Store) objectKey(key string) string {
	return path.Join(s.prefix, key) + suffix
}

// settingsKey maps an object name back to a settings key. Objects outside the
// prefix or without the suffix are ignored.
func (s *Store) settingsKey(object string) (string, bool) {
	if s.prefix != "" {
		if !strings.HasPrefix(object, s.prefix+"/") {
			return "", false
		}
		object = strings.TrimPrefix(object, s.prefix+"/")
	}
	if !strings.HasSuffix(object, suffix) || strings.Contains(object, "/") {
		return "", false
	}
	key := strings.TrimSuffix(object, suffix)
	return key, key != ""
}

func (s *Store) Read(ctx context.Context, key string) (any, bool, error) {
	return s.get(ctx, s.objectKey(key))
}

func (s *Store) get(ctx context.Context, object string) (any, bool, error) {
	out, err := s.client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(object),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3 get %s: %w", object, err)
	}
	defer out.Body.Close() //nolint:errcheck

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3 get %s: %w", object, err)
	}

	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", object, err)
	}
	return tree.Normalize(v), true, nil
}

func (s *Store) Write(ctx context.Context, key string, value any) error {
	b, err := yaml.Marshal(tree.Compact(tree.Normalize(value)))
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	object := s.objectKey(key)
	_, err = s.client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(s.bucket),
		Key:         awsv2.String(object),
		Body:        bytes.NewReader(b),
		ContentType: awsv2.String("application/yaml"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", object, err)
	}
	log.Debugf("s3 put: bucket=%s, key=%s, bytes=%d", s.bucket, object, len(b))
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	object := s.objectKey(key)
	_, err := s.client.DeleteObject(ctx, &s3v2.DeleteObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(object),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", object, err)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context) (map[string]any, error) {
	in := &s3v2.ListObjectsV2Input{Bucket: awsv2.String(s.bucket)}
	if s.prefix != "" {
		in.Prefix = awsv2.String(s.prefix + "/")
	}

	out := map[string]any{}
	p := s3v2.NewListObjectsV2Paginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			object := awsv2.ToString(obj.Key)
			key, ok := s.settingsKey(object)
			if !ok {
				continue
			}
			v, found, err := s.get(ctx, object)
			if err != nil {
				return nil, err
			}
			if found {
				out[key] = v
			}
		}
	}

	log.Debugf("s3 list: bucket=%s, prefix=%s, keys=%d", s.bucket, s.prefix, len(out))
	return out, nil
}
