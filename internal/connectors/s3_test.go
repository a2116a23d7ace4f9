package connectors

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ccerrors "github.com/wwd1015/cloudconduit/internal/errors"
	"github.com/wwd1015/cloudconduit/pkg/connector"
)

// fakeS3 records calls and serves canned objects keyed by "bucket/key".
type fakeS3 struct {
	buckets []types.Bucket
	objects map[string][]byte

	putCalls    []s3.PutObjectInput
	deleteCalls []s3.DeleteObjectInput
	copyCalls   []s3.CopyObjectInput
	listErr     error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) ListBuckets(ctx context.Context, in *s3.ListBucketsInput, opts ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &s3.ListBucketsOutput{Buckets: f.buckets}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Prefix)
	var contents []types.Object
	for path, body := range f.objects {
		if strings.HasPrefix(path, prefix) {
			key := strings.TrimPrefix(path, aws.ToString(in.Bucket)+"/")
			contents = append(contents, types.Object{
				Key:  aws.String(key),
				Size: aws.Int64(int64(len(body))),
			})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	f.putCalls = append(f.putCalls, *in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(body)))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	f.deleteCalls = append(f.deleteCalls, *in)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) CopyObject(ctx context.Context, in *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	src := aws.ToString(in.CopySource)
	if body, ok := f.objects[src]; ok {
		f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	}
	f.copyCalls = append(f.copyCalls, *in)
	return &s3.CopyObjectOutput{}, nil
}

func newTestS3(t *testing.T, fake *fakeS3) *S3 {
	t.Helper()
	return NewS3WithClient(map[string]string{"region_name": "us-east-1"}, fake, testLogger())
}

func TestS3ExecuteListBuckets(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fake.buckets = []types.Bucket{
		{Name: aws.String("data-lake"), CreationDate: aws.Time(created)},
		{Name: aws.String("archive")},
	}

	frame, err := newTestS3(t, fake).Execute(context.Background(), "list_buckets")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "creation_date"}, frame.Columns)
	assert.Equal(t, 2, frame.NumRows())
	assert.Equal(t, "data-lake", frame.Cell(0, 0))
	assert.Equal(t, "2024-03-01T12:00:00Z", frame.Cell(0, 1))
	assert.Equal(t, "", frame.Cell(1, 1))
}

func TestS3ExecuteListObjects(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	fake.objects["data-lake/raw/a.csv"] = []byte("x")
	fake.objects["data-lake/curated/b.csv"] = []byte("y")

	frame, err := newTestS3(t, fake).Execute(context.Background(), "list_objects data-lake raw/")
	require.NoError(t, err)
	assert.Equal(t, 1, frame.NumRows())
	assert.Equal(t, "raw/a.csv", frame.Cell(0, 0))
}

func TestS3ExecuteRejectsUnknownOperation(t *testing.T) {
	t.Parallel()

	_, err := newTestS3(t, newFakeS3()).Execute(context.Background(), "select * from t")
	require.Error(t, err)

	var userErr ccerrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Suggestion, "list_buckets")
}

func TestS3ExecuteListObjectsNeedsBucket(t *testing.T) {
	t.Parallel()

	_, err := newTestS3(t, newFakeS3()).Execute(context.Background(), "list_objects")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a bucket")
}

func TestS3UploadFrameCSV(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	c := newTestS3(t, fake)

	frame := connector.NewFrame("id", "name")
	require.NoError(t, frame.AppendRow(1, "alice"))

	err := c.UploadFrame(context.Background(), frame, "data-lake/exports/users.csv", connector.UploadOptions{})
	require.NoError(t, err)

	require.Len(t, fake.putCalls, 1)
	assert.Equal(t, "text/csv", aws.ToString(fake.putCalls[0].ContentType))
	body := string(fake.objects["data-lake/exports/users.csv"])
	assert.True(t, strings.HasPrefix(body, "id,name\n"))
	assert.Contains(t, body, "1,alice")
}

func TestS3UploadFrameFailWhenExists(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	fake.objects["data-lake/exports/users.csv"] = []byte("old")
	c := newTestS3(t, fake)

	frame := connector.NewFrame("id")
	require.NoError(t, frame.AppendRow(1))

	err := c.UploadFrame(context.Background(), frame, "data-lake/exports/users.csv",
		connector.UploadOptions{IfExists: connector.IfExistsFail})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, fake.putCalls)
}

func TestS3UploadFrameRejectsBadDestination(t *testing.T) {
	t.Parallel()

	c := newTestS3(t, newFakeS3())
	err := c.UploadFrame(context.Background(), connector.NewFrame("a"), "just-a-bucket", connector.UploadOptions{})
	require.Error(t, err)

	var cfgErr ccerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "destination", cfgErr.Field)
}

func TestS3DownloadFrameRoundTrip(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	c := newTestS3(t, fake)

	frame := connector.NewFrame("id", "name")
	require.NoError(t, frame.AppendRow(1, "alice"))
	require.NoError(t, c.UploadFrame(context.Background(), frame, "data-lake/users.json",
		connector.UploadOptions{Format: connector.FormatJSON}))

	// format inferred from .json extension
	got, err := c.DownloadFrame(context.Background(), "data-lake/users.json", "")
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumRows())
	assert.ElementsMatch(t, []string{"id", "name"}, got.Columns)
}

func TestS3CopyAndDrop(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	fake.objects["data-lake/a.csv"] = []byte("id\n1\n")
	c := newTestS3(t, fake)
	ctx := context.Background()

	require.NoError(t, c.CopyTable(ctx, "data-lake/a.csv", "archive/a.csv"))
	assert.Equal(t, []byte("id\n1\n"), fake.objects["archive/a.csv"])

	require.NoError(t, c.DropTable(ctx, "data-lake/a.csv"))
	_, exists := fake.objects["data-lake/a.csv"]
	assert.False(t, exists)
}

func TestS3PutGetObjectRoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestS3(t, newFakeS3())
	ctx := context.Background()

	require.NoError(t, c.PutObject(ctx, "data-lake/raw/blob.bin", []byte("payload"), ""))
	body, err := c.GetObject(ctx, "data-lake/raw/blob.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)

	_, err = c.GetObject(ctx, "data-lake/raw/missing.bin")
	require.Error(t, err)
}

func TestS3GrantAccessIsAdvisory(t *testing.T) {
	t.Parallel()

	c := newTestS3(t, newFakeS3())
	require.NoError(t, c.GrantAccess(context.Background(), "data-lake/a.csv", "jane", ""))
}

func TestS3ConnectProbesListBuckets(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	fake.listErr = errors.New("AccessDenied")

	c := &S3{
		cfg:       map[string]string{"region_name": "us-east-1"},
		logger:    testLogger(),
		newClient: func(context.Context) (s3API, error) { return fake, nil },
	}

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, c.Connected())
}

func TestS3PresignNeedsRealClient(t *testing.T) {
	t.Parallel()

	c := newTestS3(t, newFakeS3())
	_, err := c.PresignURL(context.Background(), "data-lake/a.csv", time.Minute)
	require.Error(t, err)

	var capErr ccerrors.CapabilityError
	require.ErrorAs(t, err, &capErr)
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	bucket, key, err := splitPath("s3://data-lake/raw/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "data-lake", bucket)
	assert.Equal(t, "raw/a.csv", key)

	_, _, err = splitPath("nokey")
	require.Error(t, err)
	_, _, err = splitPath("/leading")
	require.Error(t, err)
}
