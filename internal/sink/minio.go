package sink

import (
	"context"
	"fmt"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/infra/httpx"
)

const defaultMinIORegion = "us-east-1"

type MinIO struct {
	client *miniogo.Client
	bucket string
	region string

	bucketReady bool
}

// NewMinIO 只构造客户端，不发起网络请求；bucket 在第一次 Put 时确认/创建。
func NewMinIO(s config.SinkSettings) (*MinIO, error) {
	creds := credentials.NewEnvMinio()
	if s.AccessKey != "" {
		creds = credentials.NewStaticV4(s.AccessKey, s.SecretKey, "")
	}
	region := strings.TrimSpace(s.Region)
	if region == "" {
		region = defaultMinIORegion
	}

	tr, err := httpx.NewTransport(s.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("初始化上传网络配置失败：%w", err)
	}

	client, err := miniogo.New(strings.TrimSpace(s.Endpoint), &miniogo.Options{
		Creds:     creds,
		Secure:    s.UseSSL,
		Region:    region,
		Transport: tr,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 minio 客户端失败：%w", err)
	}
	return &MinIO{client: client, bucket: s.Bucket, region: region}, nil
}

func (m *MinIO) Name() string { return config.SinkMinIO }

func (m *MinIO) Put(ctx context.Context, key, localPath string) (string, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return "", err
	}
	_, err := m.client.FPutObject(ctx, m.bucket, key, localPath, miniogo.PutObjectOptions{
		ContentType: contentTypePDF,
	})
	if err != nil {
		return "", fmt.Errorf("上传到 minio://%s/%s 失败：%w", m.bucket, key, err)
	}
	return "minio://" + m.bucket + "/" + key, nil
}

func (m *MinIO) ensureBucket(ctx context.Context) error {
	if m.bucketReady {
		return nil
	}
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("检查 bucket %s 失败：%w", m.bucket, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, miniogo.MakeBucketOptions{Region: m.region}); err != nil {
			return fmt.Errorf("创建 bucket %s 失败：%w", m.bucket, err)
		}
	}
	m.bucketReady = true
	return nil
}
