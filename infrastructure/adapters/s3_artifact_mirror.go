package adapters

import (
	"context"
	"os"
	"path"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/config"
	"weaveit-pipeline/domain"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var artifactContentTypes = map[string]string{
	domain.AudioSuffix: "audio/mpeg",
	domain.VideoSuffix: "video/mp4",
}

// s3ArtifactMirror copies committed artifacts to a bucket. The local store
// stays the system of record.
type s3ArtifactMirror struct {
	logger   outbound.LoggerPort
	s3Svc    s3iface.S3API
	s3Config *config.S3Config
}

func NewS3ArtifactMirror(logger outbound.LoggerPort, s3Svc s3iface.S3API, s3Config *config.S3Config) outbound.ArtifactMirrorPort {
	return &s3ArtifactMirror{
		logger:   logger,
		s3Svc:    s3Svc,
		s3Config: s3Config,
	}
}

func (s *s3ArtifactMirror) Mirror(ctx context.Context, req outbound.MirrorArtifactRequest) (*outbound.MirrorArtifactResponse, error) {
	itemPath := s.getS3ItemPath(req)

	file, err := os.Open(req.FilePath)
	if err != nil {
		s.logger.Error(err, "Failed to open artifact file")
		return nil, err
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			s.logger.Error(err, "Failed to close artifact file")
		}
	}(file)

	putInput := &s3.PutObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(itemPath),
		Body:   file,
	}
	if contentType, ok := artifactContentTypes[req.Suffix]; ok {
		putInput.ContentType = aws.String(contentType)
	}

	_, err = s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload object to S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    itemPath,
		})
		return nil, err
	}

	return &outbound.MirrorArtifactResponse{
		Key:         itemPath,
		StoreRegion: s.s3Config.Region,
	}, nil
}

func (s *s3ArtifactMirror) getS3ItemPath(req outbound.MirrorArtifactRequest) string {
	return path.Join(s.s3Config.KeyPrefix, string(req.ContentID.OutputType), req.ContentID.FileName(req.Suffix))
}

