package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

// folderMarker is the zero-length blob that materializes an otherwise empty virtual folder.
const folderMarker = ".folder"

type azure struct {
	client    *azblob.Client
	container string
	account   string
	logger    *slog.Logger
}

// NewAzure creates an Azure Blob Storage backed System. A connection string takes
// precedence; otherwise the service URL is used with DefaultAzureCredential.
// No request is made until Start is called.
func NewAzure(cfg *AzureConfig, account string, logger *slog.Logger) (System, error) {
	client, err := newAzureClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		account:   account,
		logger:    logger.With("system", "store", "backend", "azure"),
	}, nil
}

func newAzureClient(cfg *AzureConfig) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("default credential: %w", err)
	}
	return azblob.NewClient(cfg.ServiceURL, cred, nil)
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil {
			if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed", "error", err)
				return
			}
		}

		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) ListChildren(ctx context.Context, folder FolderID) ([]Item, error) {
	prefix, err := prefixOf(folder)
	if err != nil {
		return nil, err
	}

	pager := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewListBlobsHierarchyPager("/", &container.ListBlobsHierarchyOptions{
			Prefix: &prefix,
		})

	var items []Item
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs %q: %w", prefix, err)
		}

		for _, p := range resp.Segment.BlobPrefixes {
			if p.Name == nil {
				continue
			}
			id := strings.TrimSuffix(*p.Name, "/")
			items = append(items, Item{ID: id, Name: lastSegment(id), Kind: KindFolder})
		}

		for _, b := range resp.Segment.BlobItems {
			if b.Name == nil || path.Base(*b.Name) == folderMarker {
				continue
			}
			item := Item{ID: *b.Name, Name: lastSegment(*b.Name), Kind: KindFile}
			if b.Properties != nil && b.Properties.ETag != nil {
				item.Version = string(*b.Properties.ETag)
			}
			items = append(items, item)
		}
	}

	return items, nil
}

func (a *azure) CreateFolder(ctx context.Context, parent FolderID, name string) (FolderID, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	folderPath, err := childPath(parent, name)
	if err != nil {
		return "", err
	}

	opts := &azblob.UploadBufferOptions{
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{
				IfNoneMatch: to.Ptr(azcore.ETagAny),
			},
		},
	}

	_, err = a.client.UploadBuffer(ctx, a.container, path.Join(folderPath, folderMarker), []byte{}, opts)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) || isAzureConflict(err) {
			return "", &ConflictError{Name: name, ExistingID: FolderID(folderPath), Err: err}
		}
		return "", fmt.Errorf("create folder %s: %w", folderPath, err)
	}

	return FolderID(folderPath), nil
}

func (a *azure) ReadText(ctx context.Context, file FileID) (string, error) {
	key := string(file)
	if key == "" {
		return "", ErrEmptyName
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("download blob %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read blob %s: %w", key, err)
	}

	return ExtractText(ctx, key, data)
}

func (a *azure) WriteFile(ctx context.Context, folder FolderID, name string, data []byte) (FileID, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	key, err := childPath(folder, name)
	if err != nil {
		return "", err
	}

	contentType := contentTypeOf(name)
	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, key, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", key, err)
	}

	return FileID(key), nil
}

func (a *azure) CurrentAccount(ctx context.Context) (string, error) {
	return a.account, nil
}

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// isAzureConflict reports whether err is a conditional-create failure.
func isAzureConflict(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && (respErr.StatusCode == 409 || respErr.StatusCode == 412)
}
