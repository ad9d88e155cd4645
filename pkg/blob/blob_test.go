package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePut struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePut) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Put(t *testing.T) {
	fake := &fakePut{}
	s := &S3{client: fake, bucket: "exports"}

	err := s.Put(context.Background(), "exports/a.xlsx", bytes.NewReader([]byte("xlsx")), "application/x")
	require.NoError(t, err)
	assert.Equal(t, "exports", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "exports/a.xlsx", aws.ToString(fake.in.Key))
	assert.Equal(t, "application/x", aws.ToString(fake.in.ContentType))
	assert.Equal(t, []byte("xlsx"), fake.body)

	fake.err = errors.New("denied")
	err = s.Put(context.Background(), "k", bytes.NewReader(nil), "")
	assert.ErrorIs(t, err, fake.err)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put(context.Background(), "k", bytes.NewReader([]byte("v")), "text/plain"))
	assert.Error(t, m.Put(context.Background(), "k", bytes.NewReader([]byte("v2")), "text/plain"))

	data, ct, ok := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)
	assert.Equal(t, "text/plain", ct)
}
