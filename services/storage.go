package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"main/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore keeps article attachments in a GridFS bucket. Blobs are addressed
// by path, namespaced as articles/{articleID}/{fileName}.
type BlobStore struct {
	bucket  *gridfs.Bucket
	baseURL string
}

func NewBlobStore(client *mongo.Client, dbName, baseURL string) (*BlobStore, error) {
	bucket, err := gridfs.NewBucket(
		client.Database(dbName),
		options.GridFSBucket().SetName("attachments"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GridFS bucket: %w", err)
	}
	return &BlobStore{bucket: bucket, baseURL: baseURL}, nil
}

// AttachmentPath builds the storage path for an article attachment
func AttachmentPath(articleID, fileName string) string {
	return fmt.Sprintf("articles/%s/%s", articleID, fileName)
}

// Upload stores the raw bytes under path, replacing any previous blob with
// the same path so re-uploads behave as overwrites.
func (s *BlobStore) Upload(path string, data []byte) error {
	if err := s.deleteByPath(path); err != nil && err != ErrBlobNotFound {
		return err
	}

	_, err := s.bucket.UploadFromStream(path, bytes.NewReader(data))
	if err != nil {
		utils.TrackFileProcessing("upload", false)
		return fmt.Errorf("failed to upload blob %s: %w", path, err)
	}
	utils.TrackFileProcessing("upload", true)
	return nil
}

// DownloadURL returns the durable URL an ArticleFile carries for path
// articles/{articleID}/{fileName}.
func (s *BlobStore) DownloadURL(articleID, fileName string) string {
	return fmt.Sprintf("%s/api/files/%s/%s", s.baseURL, articleID, url.PathEscape(fileName))
}

// Download streams the blob stored under path into w.
func (s *BlobStore) Download(path string, w io.Writer) (int64, error) {
	n, err := s.bucket.DownloadToStreamByName(path, w)
	if err != nil {
		if err == gridfs.ErrFileNotFound {
			return 0, ErrBlobNotFound
		}
		return 0, fmt.Errorf("failed to download blob %s: %w", path, err)
	}
	return n, nil
}

// Delete removes the blob stored under path. Returns ErrBlobNotFound when no
// blob exists at that path.
func (s *BlobStore) Delete(path string) error {
	return s.deleteByPath(path)
}

func (s *BlobStore) deleteByPath(path string) error {
	cursor, err := s.bucket.Find(bson.M{"filename": path})
	if err != nil {
		return fmt.Errorf("failed to look up blob %s: %w", path, err)
	}

	var files []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(context.Background(), &files); err != nil {
		return fmt.Errorf("failed to decode blob records for %s: %w", path, err)
	}
	if len(files) == 0 {
		return ErrBlobNotFound
	}

	for _, f := range files {
		if err := s.bucket.Delete(f.ID); err != nil && err != mongo.ErrNoDocuments {
			return fmt.Errorf("failed to delete blob %s: %w", path, err)
		}
	}
	return nil
}
