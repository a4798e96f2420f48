package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/omariomari2/wvs-102/internal/domain/sessions"
)

const objectPrefix = "sessions/"

// Store keeps one JSON object per session key in a MinIO bucket.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

func objectKey(sessionKey string) string { return objectPrefix + sessionKey + ".json" }

func (s *Store) Save(ctx context.Context, sess *domain.Session) error {
	doc, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucketName, objectKey(sess.Key),
		bytes.NewReader(doc), int64(len(doc)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

func (s *Store) Load(ctx context.Context, key string) (*domain.Session, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, objectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	doc, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var sess domain.Session
	if err := json.Unmarshal(doc, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteIdle removes session objects whose last modification is before the
// cutoff. Object mtime tracks lastActivity because every session touch
// rewrites the object.
func (s *Store) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	n := 0
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: objectPrefix}) {
		if obj.Err != nil {
			return n, obj.Err
		}
		if !obj.LastModified.Before(before) {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucketName, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}
