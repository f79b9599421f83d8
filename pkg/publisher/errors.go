package publisher

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAssets reports an empty batch.
	ErrNoAssets = errors.New("at least one asset is required")
	// ErrVerificationFailed reports a stored asset that could not be read back.
	ErrVerificationFailed = errors.New("asset verification failed")
	// ErrManifestIntegrity reports a manifest that did not read back intact.
	ErrManifestIntegrity = errors.New("manifest integrity check failed")
)

// AssetUploadError reports a failed put for the asset at Index.
type AssetUploadError struct {
	Index int
	Name  string
	Err   error
}

func (e AssetUploadError) Error() string {
	return fmt.Sprintf("upload asset %d%s: %v", e.Index, describeName(e.Name), e.Err)
}

func (e AssetUploadError) Unwrap() error {
	return e.Err
}

// VerificationFailedError reports a failed read-back probe for the asset at Index.
type VerificationFailedError struct {
	Index  int
	Name   string
	BlobID string
	Err    error
}

func (e VerificationFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verify asset %d%s (blob %s): %v", e.Index, describeName(e.Name), e.BlobID, e.Err)
	}
	return fmt.Sprintf("verify asset %d%s: blob %s not readable", e.Index, describeName(e.Name), e.BlobID)
}

func (e VerificationFailedError) Is(target error) bool {
	return target == ErrVerificationFailed
}

func (e VerificationFailedError) Unwrap() error {
	return e.Err
}

// ManifestIntegrityError reports a manifest that could not be read back or
// differed from the local copy.
type ManifestIntegrityError struct {
	BlobID         string
	ExpectedLength int
	ActualLength   int
	Err            error
}

func (e ManifestIntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("manifest %s integrity check failed: %v", e.BlobID, e.Err)
	}
	return fmt.Sprintf(
		"manifest %s integrity check failed: expected %d entries in order, read back %d",
		e.BlobID,
		e.ExpectedLength,
		e.ActualLength,
	)
}

func (e ManifestIntegrityError) Is(target error) bool {
	return target == ErrManifestIntegrity
}

func (e ManifestIntegrityError) Unwrap() error {
	return e.Err
}

func describeName(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", name)
}
