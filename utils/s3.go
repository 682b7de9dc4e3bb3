package utils

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var s3Client *s3.Client

// InitS3 sets up the S3 client for meal photo uploads. Uploads are
// optional: when S3_BUCKET is unset meals are saved without an image URL.
func InitS3() {
	if os.Getenv("S3_BUCKET") == "" {
		log.Println("S3_BUCKET not set, meal photo upload disabled")
		return
	}

	region := os.Getenv("S3_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("Unable to load AWS config for S3: %v", err)
	}
	s3Client = s3.NewFromConfig(cfg)
}

func S3Enabled() bool { return s3Client != nil }

// UploadMealImage stores a data-URL image under meal-photos/ and returns
// its public URL.
func UploadMealImage(ctx context.Context, dataURL string) (string, error) {
	if s3Client == nil {
		return "", fmt.Errorf("S3 upload not configured")
	}

	contentType, data, err := ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}

	ext := "." + strings.TrimPrefix(contentType, "image/")
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("meal-photos/%d%s", time.Now().UnixNano(), ext)

	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(os.Getenv("S3_BUCKET")),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	base := os.Getenv("CLOUDFRONT_URL")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", os.Getenv("S3_BUCKET"))
	}
	return fmt.Sprintf("%s/%s", base, key), nil
}
