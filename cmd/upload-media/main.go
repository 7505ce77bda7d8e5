package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mellowdog/pawdesk/internal/logger"
	"github.com/mellowdog/pawdesk/internal/media"
)

func main() {
	// Initialize structured logger
	log := logger.New("upload-media")

	var (
		bucketName string
		objectName string
		filePath   string
	)

	flag.StringVar(&bucketName, "bucket", "", "Cloud Storage bucket name (required)")
	flag.StringVar(&objectName, "object", "", "Object name (optional; defaults to visits/YYYY/MM/DD/<file name>)")
	flag.StringVar(&filePath, "file", "", "Path to local photo or video file (required)")
	flag.Parse()

	if bucketName == "" || filePath == "" {
		log.Fatal().Msg("Usage: upload-media -bucket BUCKET_NAME -file /path/to/photo.jpg [-object OBJECT_NAME]")
	}

	if objectName == "" {
		objectName = filepath.Join("visits", time.Now().Format("2006/01/02"), filepath.Base(filePath))
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", bucketName).
		Str("object", objectName).
		Str("file", filePath).
		Msg("Uploading visit media")

	if err := media.NewService().UploadFile(ctx, bucketName, objectName, filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", filePath, bucketName, objectName)
}
