package connectors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wwd1015/cloudconduit/internal/config"
	ccerrors "github.com/wwd1015/cloudconduit/internal/errors"
	"github.com/wwd1015/cloudconduit/internal/logging"
	"github.com/wwd1015/cloudconduit/pkg/connector"
)

// s3API is the slice of the S3 client the connector uses. Tests provide
// a fake; production wires *s3.Client.
type s3API interface {
	ListBuckets(ctx context.Context, in *s3.ListBucketsInput, opts ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// S3 is the object store connector. Destinations are "bucket/key" paths;
// frames are stored as CSV or JSON objects.
type S3 struct {
	cfg       map[string]string
	logger    *logging.Logger
	client    s3API
	connected bool

	newClient func(ctx context.Context) (s3API, error)
}

// NewS3 builds an S3 connector from the resolver. No parameters are
// strictly required; ambient AWS credentials (instance profiles, SSO)
// are a valid configuration.
func NewS3(r *config.Resolver, overrides map[string]string, logger *logging.Logger) *S3 {
	c := &S3{cfg: r.S3Config(overrides), logger: logger}
	c.newClient = c.buildClient
	return c
}

// NewS3WithClient wires a prebuilt client, used by tests.
func NewS3WithClient(cfg map[string]string, client s3API, logger *logging.Logger) *S3 {
	c := &S3{cfg: cfg, logger: logger, client: client, connected: true}
	c.newClient = func(context.Context) (s3API, error) { return client, nil }
	return c
}

// Config returns the resolved parameter mapping.
func (c *S3) Config() map[string]string {
	return c.cfg
}

func (c *S3) buildClient(ctx context.Context) (s3API, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.cfg["region_name"]),
	}
	if id, secret := c.cfg["aws_access_key_id"], c.cfg["aws_secret_access_key"]; id != "" && secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, secret, c.cfg["aws_session_token"])))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, ccerrors.BackendError("s3", "load credentials", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// Connect builds the client and probes access with a bucket listing.
func (c *S3) Connect(ctx context.Context) error {
	if c.connected {
		return nil
	}

	client, err := c.newClient(ctx)
	if err != nil {
		return err
	}
	if _, err := client.ListBuckets(ctx, &s3.ListBucketsInput{}); err != nil {
		return ccerrors.BackendError("s3", "connect", err)
	}

	c.client = client
	c.connected = true
	c.logger.Debug("connected to s3 in region %s", c.cfg["region_name"])
	return nil
}

// Close drops the client. S3 holds no persistent connection.
func (c *S3) Close() error {
	c.client = nil
	c.connected = false
	return nil
}

// Connected reports whether the access probe succeeded.
func (c *S3) Connected() bool {
	return c.connected
}

// Execute supports two read operations: "list_buckets" and
// "list_objects <bucket> [prefix]".
func (c *S3) Execute(ctx context.Context, query string) (*connector.Frame, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil, ccerrors.UserError{
			Message:    "empty s3 operation",
			Suggestion: "Use list_buckets or list_objects <bucket> [prefix]",
		}
	}

	switch strings.ToLower(fields[0]) {
	case "list_buckets":
		return c.ListBuckets(ctx)
	case "list_objects":
		if len(fields) < 2 {
			return nil, ccerrors.UserError{
				Message:    "list_objects needs a bucket",
				Suggestion: "Use list_objects <bucket> [prefix]",
			}
		}
		prefix := ""
		if len(fields) > 2 {
			prefix = fields[2]
		}
		return c.ListObjects(ctx, fields[1], prefix)
	default:
		return nil, ccerrors.UserError{
			Message:    fmt.Sprintf("unsupported s3 operation %q", fields[0]),
			Suggestion: "Use list_buckets or list_objects <bucket> [prefix]",
		}
	}
}

// ListBuckets returns the accessible buckets as a frame.
func (c *S3) ListBuckets(ctx context.Context) (*connector.Frame, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	out, err := c.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, ccerrors.BackendError("s3", "list buckets", err)
	}

	frame := connector.NewFrame("name", "creation_date")
	for _, b := range out.Buckets {
		created := ""
		if b.CreationDate != nil {
			created = b.CreationDate.UTC().Format(time.RFC3339)
		}
		if err := frame.AppendRow(aws.ToString(b.Name), created); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// ListObjects returns the objects under a prefix as a frame, following
// continuation tokens.
func (c *S3) ListObjects(ctx context.Context, bucket, prefix string) (*connector.Frame, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	frame := connector.NewFrame("key", "size", "last_modified")

	in := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		in.Prefix = aws.String(prefix)
	}
	for {
		out, err := c.client.ListObjectsV2(ctx, in)
		if err != nil {
			return nil, ccerrors.BackendError("s3", "list objects", err)
		}
		for _, obj := range out.Contents {
			modified := ""
			if obj.LastModified != nil {
				modified = obj.LastModified.UTC().Format(time.RFC3339)
			}
			if err := frame.AppendRow(aws.ToString(obj.Key), aws.ToInt64(obj.Size), modified); err != nil {
				return nil, err
			}
		}
		if out.NextContinuationToken == nil {
			break
		}
		in.ContinuationToken = out.NextContinuationToken
	}
	return frame, nil
}

// splitPath splits a "bucket/key" destination.
func splitPath(destination string) (bucket, key string, err error) {
	parts := strings.SplitN(strings.TrimPrefix(destination, "s3://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ccerrors.ConfigError{
			Field:   "destination",
			Value:   destination,
			Message: "expected bucket/key",
		}
	}
	return parts[0], parts[1], nil
}

func contentType(format string) string {
	if format == connector.FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// UploadFrame stores a frame as a CSV or JSON object at "bucket/key".
// IfExists is honored: fail rejects existing keys, replace and append
// both overwrite (objects are immutable).
func (c *S3) UploadFrame(ctx context.Context, frame *connector.Frame, destination string, opts connector.UploadOptions) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	opts = opts.Normalize()

	bucket, key, err := splitPath(destination)
	if err != nil {
		return err
	}

	if opts.IfExists == connector.IfExistsFail {
		out, err := c.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			Prefix:  aws.String(key),
			MaxKeys: aws.Int32(1),
		})
		if err != nil {
			return ccerrors.BackendError("s3", "object check", err)
		}
		for _, obj := range out.Contents {
			if aws.ToString(obj.Key) == key {
				return ccerrors.UserError{Message: fmt.Sprintf("object %s already exists", destination)}
			}
		}
	}

	var buf bytes.Buffer
	switch opts.Format {
	case connector.FormatCSV:
		err = frame.EncodeCSV(&buf)
	case connector.FormatJSON:
		err = frame.EncodeJSON(&buf)
	default:
		return ccerrors.ConfigError{
			Field:   "format",
			Value:   opts.Format,
			Message: "must be csv or json",
		}
	}
	if err != nil {
		return err
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType(opts.Format)),
	})
	if err != nil {
		return ccerrors.BackendError("s3", "put object", err)
	}
	c.logger.Debug("uploaded %d rows to s3://%s/%s", frame.NumRows(), bucket, key)
	return nil
}

// DownloadFrame fetches an object and decodes it by format, inferred
// from the key extension when format is empty.
func (c *S3) DownloadFrame(ctx context.Context, source, format string) (*connector.Frame, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	bucket, key, err := splitPath(source)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = connector.FormatCSV
		if strings.HasSuffix(strings.ToLower(key), ".json") {
			format = connector.FormatJSON
		}
	}

	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ccerrors.BackendError("s3", "get object", err)
	}
	defer out.Body.Close()

	switch format {
	case connector.FormatCSV:
		return connector.DecodeCSV(out.Body)
	case connector.FormatJSON:
		return connector.DecodeJSON(out.Body)
	default:
		return nil, ccerrors.ConfigError{
			Field:   "format",
			Value:   format,
			Message: "must be csv or json",
		}
	}
}

// PutObject writes raw bytes to "bucket/key".
func (c *S3) PutObject(ctx context.Context, destination string, body []byte, contentType string) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	bucket, key, err := splitPath(destination)
	if err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := c.client.PutObject(ctx, in); err != nil {
		return ccerrors.BackendError("s3", "put object", err)
	}
	return nil
}

// GetObject reads the raw bytes of "bucket/key".
func (c *S3) GetObject(ctx context.Context, source string) ([]byte, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	bucket, key, err := splitPath(source)
	if err != nil {
		return nil, err
	}

	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ccerrors.BackendError("s3", "get object", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// CopyObject copies an object from one "bucket/key" path to another.
func (c *S3) CopyObject(ctx context.Context, source, target string) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	srcBucket, srcKey, err := splitPath(source)
	if err != nil {
		return err
	}
	dstBucket, dstKey, err := splitPath(target)
	if err != nil {
		return err
	}

	_, err = c.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(srcBucket + "/" + srcKey),
	})
	if err != nil {
		return ccerrors.BackendError("s3", "copy object", err)
	}
	return nil
}

// DeleteObject deletes the object at "bucket/key".
func (c *S3) DeleteObject(ctx context.Context, path string) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	bucket, key, err := splitPath(path)
	if err != nil {
		return err
	}

	_, err = c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ccerrors.BackendError("s3", "delete object", err)
	}
	return nil
}

// CopyTable satisfies the Connector contract; names are "bucket/key".
func (c *S3) CopyTable(ctx context.Context, source, target string) error {
	return c.CopyObject(ctx, source, target)
}

// DropTable satisfies the Connector contract; the name is "bucket/key".
func (c *S3) DropTable(ctx context.Context, name string) error {
	return c.DeleteObject(ctx, name)
}

// GrantAccess is advisory for S3: object grants go through bucket
// policies and IAM, outside this connector's scope.
func (c *S3) GrantAccess(ctx context.Context, name, grantee, privileges string) error {
	c.logger.Warn("s3 access to %s for %s is managed by bucket policy and IAM, not by this tool", name, grantee)
	return nil
}

// PresignURL produces a time-limited GET URL for "bucket/key". It needs
// the real AWS client; injected fakes cannot presign.
func (c *S3) PresignURL(ctx context.Context, source string, expiry time.Duration) (string, error) {
	if err := c.Connect(ctx); err != nil {
		return "", err
	}

	client, ok := c.client.(*s3.Client)
	if !ok {
		return "", ccerrors.CapabilityError{Capability: "presigned URLs", Platform: "injected client"}
	}

	bucket, key, err := splitPath(source)
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	presigner := s3.NewPresignClient(client)
	out, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", ccerrors.BackendError("s3", "presign", err)
	}
	return out.URL, nil
}

var _ connector.Connector = (*S3)(nil)
