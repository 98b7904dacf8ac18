package s3store

import (
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// isNotFound reports whether an S3 error means the object does not exist
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return stderrors.As(err, &notFound) || stderrors.As(err, &noSuchKey)
}
