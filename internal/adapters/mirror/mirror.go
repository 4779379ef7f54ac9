// Package mirror copies built libraries to S3-compatible object storage so that runners
// and other tools can fetch any past build by content digest.
package mirror

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactMirror = (*Mirror)(nil)

// objectStore is the subset of *minio.Client the mirror uses.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	FPutObject(ctx context.Context, bucket, key, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Mirror uploads libraries under <target>/<digest>/<name>. Objects are immutable: a key
// that already exists is never uploaded again.
type Mirror struct {
	store  objectStore
	bucket string
	region string
	logger ports.Logger

	initOnce sync.Once
	initErr  error
}

// New connects to the configured endpoint.
func New(cfg domain.MirrorConfig, logger ports.Logger) (*Mirror, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" || strings.TrimSpace(cfg.Bucket) == "" {
		return nil, zerr.New("mirror endpoint and bucket are required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "couldn't create mirror client"), "endpoint", endpoint)
	}
	return newMirror(client, cfg.Bucket, cfg.Region, logger), nil
}

func newMirror(store objectStore, bucket, region string, logger ports.Logger) *Mirror {
	return &Mirror{store: store, bucket: bucket, region: region, logger: logger}
}

// ObjectKey returns the key a record of target is stored under.
func ObjectKey(target domain.Target, rec domain.HashedFileRecord) string {
	return path.Join(target.String(), rec.Hash.String(), rec.Name)
}

// Mirror uploads every record whose object is missing and returns how many were uploaded.
func (m *Mirror) Mirror(ctx context.Context, target domain.Target, records []domain.HashedFileRecord) (int, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return 0, err
	}

	uploaded := 0
	for _, rec := range records {
		key := ObjectKey(target, rec)

		exists, err := m.exists(ctx, key)
		if err != nil {
			return uploaded, err
		}
		if exists {
			continue
		}

		_, err = m.store.FPutObject(ctx, m.bucket, key, rec.LocalPath, minio.PutObjectOptions{
			ContentType:  "application/octet-stream",
			UserMetadata: map[string]string{"name": rec.Name},
		})
		if err != nil {
			return uploaded, zerr.With(zerr.With(zerr.Wrap(err, "couldn't upload library"), "key", key), "path", rec.LocalPath)
		}
		m.logger.Debug("mirrored " + key)
		uploaded++
	}
	return uploaded, nil
}

func (m *Mirror) exists(ctx context.Context, key string) (bool, error) {
	_, err := m.store.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == minio.NoSuchKey {
		return false, nil
	}
	return false, zerr.With(zerr.Wrap(err, "couldn't stat mirrored object"), "key", key)
}

func (m *Mirror) ensureBucket(ctx context.Context) error {
	m.initOnce.Do(func() {
		exists, err := m.store.BucketExists(ctx, m.bucket)
		if err != nil {
			m.initErr = zerr.With(zerr.Wrap(err, "couldn't check mirror bucket"), "bucket", m.bucket)
			return
		}
		if exists {
			return
		}
		if err := m.store.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
			m.initErr = zerr.With(zerr.Wrap(err, "couldn't create mirror bucket"), "bucket", m.bucket)
		}
	})
	return m.initErr
}
