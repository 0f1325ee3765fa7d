package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"

	"healthcore/internal/domain/entity"
	"healthcore/pkg/errors"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSArchiver writes finished days to a Cloud Storage bucket.
type GCSArchiver struct {
	client     *storage.Client
	bucketName string
}

func NewGCSArchiver(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSArchiver{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (a *GCSArchiver) Archive(ctx context.Context, state *entity.GameState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	obj := a.client.Bucket(a.bucketName).Object(ObjectName(state.UserID, state.Date))
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	w.Metadata = map[string]string{
		"userId": state.UserID,
		"date":   state.Date,
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write archive object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive object: %w", err)
	}

	return nil
}

func (a *GCSArchiver) ArchivedDates(ctx context.Context, userID string) ([]string, error) {
	it := a.client.Bucket(a.bucketName).Objects(ctx, &storage.Query{Prefix: userPrefix(userID)})

	dates := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list archived days: %w", err)
		}
		dates = append(dates, dateFromObject(attrs.Name))
	}

	sort.Strings(dates)
	return dates, nil
}

func (a *GCSArchiver) ArchivedDay(ctx context.Context, userID, date string) (*entity.GameState, error) {
	r, err := a.client.Bucket(a.bucketName).Object(ObjectName(userID, date)).NewReader(ctx)
	if err != nil {
		return nil, readError(err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read archived day: %w", err)
	}

	return decodeState(data)
}

func readError(err error) error {
	if stderrors.Is(err, storage.ErrObjectNotExist) {
		return errors.NotFound("Archived day", err)
	}
	return fmt.Errorf("failed to open archived day: %w", err)
}

func (a *GCSArchiver) Close() error {
	return a.client.Close()
}
