package sync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"shopsync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testReport() *Report {
	return &Report{
		RunID:     "run-1",
		OK:        true,
		StartedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
}

func TestArchive_UploadsDatePartitionedReport(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reports").Return(true, nil)

	var uploaded []byte
	client.On("PutObject", mock.Anything, "reports", "reports/2026/08/28/run-run-1.json",
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			uploaded = data
		}).
		Return(minio.UploadInfo{}, nil)

	a := NewArchiver(client, "reports", zap.NewNop())
	err := a.Archive(context.Background(), testReport())
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(uploaded, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	client.AssertExpectations(t)
}

func TestArchive_CreatesMissingBucketOnce(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reports").Return(false, nil).Once()
	client.On("MakeBucket", mock.Anything, "reports", mock.Anything).Return(nil).Once()
	client.On("PutObject", mock.Anything, "reports", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil).Twice()

	a := NewArchiver(client, "reports", zap.NewNop())
	require.NoError(t, a.Archive(context.Background(), testReport()))
	// The bucket check is cached for the second report.
	require.NoError(t, a.Archive(context.Background(), testReport()))
	client.AssertExpectations(t)
}

func TestArchive_BucketFailureSurfacesAndRetriesNextTime(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reports").
		Return(false, errors.New("endpoint unreachable")).Once()
	client.On("BucketExists", mock.Anything, "reports").Return(true, nil).Once()
	client.On("PutObject", mock.Anything, "reports", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()

	a := NewArchiver(client, "reports", zap.NewNop())
	assert.Error(t, a.Archive(context.Background(), testReport()))
	assert.NoError(t, a.Archive(context.Background(), testReport()))
	client.AssertExpectations(t)
}

func TestArchive_UploadFailure(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "reports").Return(true, nil)
	client.On("PutObject", mock.Anything, "reports", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("write denied"))

	a := NewArchiver(client, "reports", zap.NewNop())
	err := a.Archive(context.Background(), testReport())
	assert.ErrorContains(t, err, "write denied")
}
