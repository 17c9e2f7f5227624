package geofence_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/domain"
	"github.com/geofence-microservice/internal/index"
	"github.com/geofence-microservice/internal/repository/geojson"
	"github.com/geofence-microservice/internal/usecase"
	"github.com/geofence-microservice/internal/worker/geofence"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, limit int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

const testCollection = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"ST_NM": "Delhi", "STATE_CODE": "IN-DL"},
			"geometry": {"type": "Polygon", "coordinates": [[[76.8,28.4],[77.4,28.4],[77.4,29.0],[76.8,29.0],[76.8,28.4]]]}
		}
	]
}`

func newTestLocateUseCase(t *testing.T) *usecase.LocateUseCase {
	t.Helper()

	repo, err := geojson.NewFromReader(
		strings.NewReader(testCollection),
		func(regions []*domain.Region) geojson.RegionIndex { return index.Build(regions) },
		zap.NewNop(),
	)
	require.NoError(t, err)

	return usecase.NewLocateUseCase(repo, nil, zap.NewNop(), 0)
}

func TestResolveWorker_Name(t *testing.T) {
	worker := geofence.NewResolveWorker(
		&MockStreamRepository{},
		newTestLocateUseCase(t),
		"test-group",
		10,
		zap.NewNop(),
	)

	assert.Equal(t, "geofence-resolve", worker.Name())
	assert.Equal(t, "test-group", worker.ConsumerGroup())
}

func TestResolveWorker_Stop(t *testing.T) {
	worker := geofence.NewResolveWorker(
		&MockStreamRepository{},
		newTestLocateUseCase(t),
		"test-group",
		10,
		zap.NewNop(),
	)

	// Stop should be safe before start and idempotent
	assert.NoError(t, worker.Stop())
	assert.NoError(t, worker.Stop())
	assert.True(t, worker.IsStopped())
}

func TestResolveWorker_Start_ConsumerGroupError(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamGeofenceResolve, "test-group").
		Return(assert.AnError)

	worker := geofence.NewResolveWorker(
		mockStream,
		newTestLocateUseCase(t),
		"test-group",
		10,
		zap.NewNop(),
	)

	err := worker.Start(context.Background())
	assert.Error(t, err)
	mockStream.AssertExpectations(t)
}

func TestResolveWorker_ProcessesMessage(t *testing.T) {
	requestID := uuid.New()
	payload, err := json.Marshal(domain.GeofenceResolveEvent{
		RequestID: requestID,
		Latitude:  28.7041,
		Longitude: 77.1025,
	})
	require.NoError(t, err)

	messages := []domain.StreamMessage{{ID: "1-0", Data: string(payload)}}

	published := make(chan *domain.GeofenceDoneEvent, 1)

	mockStream := &MockStreamRepository{}
	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamGeofenceResolve, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamGeofenceResolve, "test-group", mock.Anything, 10).
		Return(messages, nil).Once()
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamGeofenceResolve, "test-group", mock.Anything, 10).
		Return([]domain.StreamMessage{}, nil)
	mockStream.On("PublishToStream", mock.Anything, domain.StreamGeofenceDone, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case published <- args.Get(2).(*domain.GeofenceDoneEvent):
			default:
			}
		}).
		Return(nil)
	mockStream.On("AckMessage", mock.Anything, domain.StreamGeofenceResolve, "test-group", "1-0").
		Return(nil)

	worker := geofence.NewResolveWorker(
		mockStream,
		newTestLocateUseCase(t),
		"test-group",
		10,
		zap.NewNop(),
	)

	go func() { _ = worker.Start(context.Background()) }()
	defer func() { _ = worker.Stop() }()

	select {
	case done := <-published:
		assert.Equal(t, requestID, done.RequestID)
		require.NotNil(t, done.RegionID)
		assert.Equal(t, int64(1), *done.RegionID)
		assert.Equal(t, "Delhi", done.Attributes[domain.AttrState])
		assert.False(t, done.NotFound)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not publish a result in time")
	}

	mockStream.AssertCalled(t, "AckMessage", mock.Anything, domain.StreamGeofenceResolve, "test-group", "1-0")
}

func TestResolveWorker_PublishesNotFound(t *testing.T) {
	requestID := uuid.New()
	payload, err := json.Marshal(domain.GeofenceResolveEvent{
		RequestID: requestID,
		Latitude:  0.5,
		Longitude: -150,
	})
	require.NoError(t, err)

	messages := []domain.StreamMessage{{ID: "2-0", Data: string(payload)}}
	published := make(chan *domain.GeofenceDoneEvent, 1)

	mockStream := &MockStreamRepository{}
	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamGeofenceResolve, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamGeofenceResolve, "test-group", mock.Anything, 10).
		Return(messages, nil).Once()
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamGeofenceResolve, "test-group", mock.Anything, 10).
		Return([]domain.StreamMessage{}, nil)
	mockStream.On("PublishToStream", mock.Anything, domain.StreamGeofenceDone, mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case published <- args.Get(2).(*domain.GeofenceDoneEvent):
			default:
			}
		}).
		Return(nil)
	mockStream.On("AckMessage", mock.Anything, domain.StreamGeofenceResolve, "test-group", "2-0").
		Return(nil)

	worker := geofence.NewResolveWorker(
		mockStream,
		newTestLocateUseCase(t),
		"test-group",
		10,
		zap.NewNop(),
	)

	go func() { _ = worker.Start(context.Background()) }()
	defer func() { _ = worker.Stop() }()

	select {
	case done := <-published:
		assert.Equal(t, requestID, done.RequestID)
		assert.True(t, done.NotFound)
		assert.Nil(t, done.RegionID)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not publish a result in time")
	}
}

func TestResolveWorker_AcksUnparsableMessage(t *testing.T) {
	messages := []domain.StreamMessage{{ID: "3-0", Data: "not json"}}
	acked := make(chan string, 1)

	mockStream := &MockStreamRepository{}
	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamGeofenceResolve, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamGeofenceResolve, "test-group", mock.Anything, 10).
		Return(messages, nil).Once()
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamGeofenceResolve, "test-group", mock.Anything, 10).
		Return([]domain.StreamMessage{}, nil)
	mockStream.On("AckMessage", mock.Anything, domain.StreamGeofenceResolve, "test-group", "3-0").
		Run(func(args mock.Arguments) {
			select {
			case acked <- args.String(3):
			default:
			}
		}).
		Return(nil)

	worker := geofence.NewResolveWorker(
		mockStream,
		newTestLocateUseCase(t),
		"test-group",
		10,
		zap.NewNop(),
	)

	go func() { _ = worker.Start(context.Background()) }()
	defer func() { _ = worker.Stop() }()

	select {
	case id := <-acked:
		assert.Equal(t, "3-0", id)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not ack the malformed message in time")
	}

	// Битое сообщение не публикуется в выходной стрим
	mockStream.AssertNotCalled(t, "PublishToStream", mock.Anything, domain.StreamGeofenceDone, mock.Anything)
}

func TestResolveWorker_ContextCancellation(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamGeofenceResolve, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamGeofenceResolve, "test-group", mock.Anything, 10).
		Return([]domain.StreamMessage{}, nil)

	worker := geofence.NewResolveWorker(
		mockStream,
		newTestLocateUseCase(t),
		"test-group",
		10,
		zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- worker.Start(ctx) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
