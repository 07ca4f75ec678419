package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

// BlobStore retrieves scenes from Azure blob storage
type BlobStore interface {
	GetRaster(ctx context.Context, blobURL string) (*models.RasterImage, error)
}

type azureStore struct {
	client  *azblob.Client
	decoder *FileStore
}

// NewAzureStore creates a blob-backed scene store
func NewAzureStore(accountName, accountKey string, decoder *FileStore) (BlobStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, apperrors.NewConfigurationError("invalid azure credentials", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, apperrors.NewConfigurationError("cannot create azure client", err)
	}

	return &azureStore{client: client, decoder: decoder}, nil
}

// GetRaster downloads a blob (container from the URL path, blob name from
// the "blob" query parameter) and decodes it into a raster
func (s *azureStore) GetRaster(ctx context.Context, blobURL string) (*models.RasterImage, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil || len(parsedURL.Path) < 2 {
		return nil, apperrors.NewValidationError("invalid blob URL "+blobURL, err)
	}

	containerName := parsedURL.Path[1:]
	blobName := parsedURL.Query().Get("blob")
	if blobName == "" {
		return nil, apperrors.NewValidationError("blob URL missing blob query parameter", nil)
	}

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("blob download failed", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	data, err := io.ReadAll(retryReader)
	if err != nil {
		return nil, apperrors.NewNetworkError("blob read failed", err)
	}
	return s.decoder.DecodeRaster(data)
}
