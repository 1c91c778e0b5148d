// Package gridfs keeps uploaded images and QR codes in a MongoDB GridFS bucket.
// The content type travels in the file metadata.
package gridfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"exportdocs/internal/core/ports"
	"exportdocs/internal/pkg/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	DefaultBucket = "shipment_files"

	defaultTimeout = 30 * time.Second
)

var _ ports.ImageStorage = (*Storage)(nil)

type fileDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Length   int64              `bson:"length"`
	Filename string             `bson:"filename"`
	Metadata struct {
		ContentType string `bson:"contentType"`
	} `bson:"metadata"`
}

type Storage struct {
	db     *mongo.Database
	bucket string
}

// Connect opens a client for uri and checks it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func New(db *mongo.Database, bucket string) *Storage {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Storage{db: db, bucket: bucket}
}

func (s *Storage) Store(ctx context.Context, filename, contentType string, content io.Reader) (ports.FileInfo, error) {
	bucket, err := s.open(ctx)
	if err != nil {
		return ports.FileInfo{}, err
	}

	counter := &countingReader{r: content}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})

	id, err := bucket.UploadFromStream(filename, counter, opts)
	if err != nil {
		return ports.FileInfo{}, fmt.Errorf("upload %s: %w", filename, err)
	}

	return ports.FileInfo{
		ID:          id.Hex(),
		Filename:    filename,
		ContentType: contentType,
		Size:        counter.n,
	}, nil
}

func (s *Storage) Fetch(ctx context.Context, fileID string, w io.Writer) (ports.FileInfo, error) {
	id, err := objectID(fileID)
	if err != nil {
		return ports.FileInfo{}, err
	}
	bucket, err := s.open(ctx)
	if err != nil {
		return ports.FileInfo{}, err
	}

	cursor, err := bucket.FindContext(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return ports.FileInfo{}, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err = cursor.Err(); err != nil {
			return ports.FileInfo{}, err
		}
		return ports.FileInfo{}, errs.NewObjectNotFoundError("fileID", fileID)
	}
	var doc fileDocument
	if err = cursor.Decode(&doc); err != nil {
		return ports.FileInfo{}, err
	}

	if _, err = bucket.DownloadToStream(id, w); err != nil {
		return ports.FileInfo{}, translate(fileID, err)
	}

	return ports.FileInfo{
		ID:          fileID,
		Filename:    doc.Filename,
		ContentType: doc.Metadata.ContentType,
		Size:        doc.Length,
	}, nil
}

func (s *Storage) Delete(ctx context.Context, fileID string) error {
	id, err := objectID(fileID)
	if err != nil {
		return err
	}
	bucket, err := s.open(ctx)
	if err != nil {
		return err
	}
	return translate(fileID, bucket.DeleteContext(ctx, id))
}

// open returns a bucket whose stream deadlines follow ctx. Buckets are cheap
// and carry per-call deadlines, so one is opened per operation.
func (s *Storage) open(ctx context.Context) (*gridfs.Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bucket, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucket))
	if err != nil {
		return nil, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultTimeout)
	}
	if err = bucket.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err = bucket.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	return bucket, nil
}

func objectID(fileID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return primitive.NilObjectID, errs.NewObjectNotFoundErrorWithCause("fileID", fileID, err)
	}
	return id, nil
}

func translate(fileID string, err error) error {
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return errs.NewObjectNotFoundError("fileID", fileID)
	}
	return err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
