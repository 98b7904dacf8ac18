package s3store

import (
	"context"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"zymeboard/adapters/artifacts"
	"zymeboard/adapters/table"
	"zymeboard/internal/cache"
	"zymeboard/internal/errors"
	"zymeboard/ports"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of the S3 client the source uses
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config holds explicit construction parameters
type Config struct {
	URL       string // s3://bucket/prefix
	Region    string
	Endpoint  string // optional; enables a custom endpoint such as MinIO
	PathStyle bool
}

// Source downloads a result set stored under an S3 prefix. The object
// names mirror the local directory layout.
type Source struct {
	client ObjectAPI
	bucket string
	prefix string
	blobs  *cache.BlobStore
}

// ParseURL splits s3://bucket/prefix
func ParseURL(raw string) (bucket, prefix string, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", errors.ConfigInvalid("s3 url must look like s3://bucket/prefix, got " + raw)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

// New creates an S3 source using the default AWS credentials chain
func New(ctx context.Context, cfg Config, blobs *cache.BlobStore) (*Source, error) {
	bucket, prefix, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.FetchError("aws configuration", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, bucket, prefix, blobs), nil
}

// NewWithClient creates a source around an existing client
func NewWithClient(client ObjectAPI, bucket, prefix string, blobs *cache.BlobStore) *Source {
	return &Source{client: client, bucket: bucket, prefix: prefix, blobs: blobs}
}

// Kind implements ports.ArtifactSource
func (s *Source) Kind() string { return "s3" }

// Fetch downloads the first table that exists, then either the combined
// archive or both split archives, then the optional card.
func (s *Source) Fetch(ctx context.Context) (*ports.Bundle, error) {
	name := path.Base(s.prefix)
	if s.prefix == "" {
		name = s.bucket
	}
	bundle := &ports.Bundle{Name: name}

	for _, candidate := range table.SupportedNames(artifacts.TableStem) {
		p, found, err := s.download(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if found {
			bundle.TablePath = p
			break
		}
	}
	if bundle.TablePath == "" {
		return nil, errors.MissingArtifact(s.objectURL(artifacts.TableStem + ".parquet"))
	}

	combined, found, err := s.download(ctx, artifacts.CombinedFile)
	if err != nil {
		return nil, err
	}
	if found {
		bundle.ArrayPaths = []string{combined}
	} else {
		for _, file := range []string{artifacts.EmbeddingFile, artifacts.StructuresFile} {
			p, found, err := s.download(ctx, file)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, errors.MissingArtifact(s.objectURL(file))
			}
			bundle.ArrayPaths = append(bundle.ArrayPaths, p)
		}
	}

	if card, found, err := s.download(ctx, artifacts.CardFile); err == nil && found {
		bundle.CardPath = card
	}
	return bundle, nil
}

// download fetches one object into the cache unless the cached etag matches
func (s *Source) download(ctx context.Context, file string) (string, bool, error) {
	key := path.Join(s.prefix, file)
	refName := path.Join("s3", s.bucket, key)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, errors.FetchError(s.objectURL(file), err)
	}
	etag := strings.Trim(aws.ToString(head.ETag), `"`)

	if cached, _ := s.blobs.ReadRef(refName); etag != "" && cached == etag {
		if ok, _ := s.blobs.BlobExists(etag); ok {
			p, err := s.blobs.Link(etag, path.Join("s3", s.bucket, s.prefix), file)
			return p, err == nil, err
		}
	}

	start := time.Now()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return "", false, errors.FetchError(s.objectURL(file), err)
	}
	defer out.Body.Close()

	digest, err := s.blobs.StoreBlob(ctx, etag, out.Body)
	if err != nil {
		return "", false, errors.FetchError(s.objectURL(file), err)
	}
	if err := s.blobs.WriteRef(refName, digest); err != nil {
		return "", false, err
	}
	log.Printf("[S3] Downloaded %s in %s", s.objectURL(file), time.Since(start).Round(time.Millisecond))

	p, err := s.blobs.Link(digest, path.Join("s3", s.bucket, s.prefix), file)
	return p, err == nil, err
}

func (s *Source) objectURL(file string) string {
	return "s3://" + path.Join(s.bucket, s.prefix, file)
}
