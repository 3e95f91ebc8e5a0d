package sink

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/infra/httpx"
)

type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 使用 AWS 默认凭证链；settings 里给了 access_key/secret_key 时改用静态凭证。
// endpoint 非空时走 path-style（兼容 S3 协议的自建存储）。
func NewS3(ctx context.Context, s config.SinkSettings) (*S3, error) {
	httpClient, err := httpx.NewClient(s.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("初始化上传网络配置失败：%w", err)
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.Region),
		awsconfig.WithHTTPClient(httpClient),
	}
	if s.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败：%w", err)
	}

	endpoint := strings.TrimSpace(s.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, bucket: s.Bucket}, nil
}

func (s *S3) Name() string { return config.SinkS3 }

func (s *S3) Put(ctx context.Context, key, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentTypePDF),
	})
	if err != nil {
		return "", fmt.Errorf("上传到 s3://%s/%s 失败：%w", s.bucket, key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}
