package geofence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geofence-microservice/internal/domain"
	"github.com/geofence-microservice/internal/domain/repository"
	"github.com/geofence-microservice/internal/usecase"
	"github.com/geofence-microservice/internal/usecase/dto"
	"github.com/geofence-microservice/internal/worker"
)

const (
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second            // пауза при ошибке чтения стрима
)

// ResolveWorker обрабатывает события определения региона по координатам:
// читает пачки из stream:geofence:resolve и публикует результаты
// в stream:geofence:done
type ResolveWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	locateUC     *usecase.LocateUseCase
	consumerName string
	batchSize    int
}

// NewResolveWorker создает новый ResolveWorker
func NewResolveWorker(
	streamRepo repository.StreamRepository,
	locateUC *usecase.LocateUseCase,
	consumerGroup string,
	batchSize int,
	logger *zap.Logger,
) *ResolveWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &ResolveWorker{
		BaseWorker:   worker.NewBaseWorker("geofence-resolve", consumerGroup, logger),
		streamRepo:   streamRepo,
		locateUC:     locateUC,
		consumerName: consumerName,
		batchSize:    batchSize,
	}
}

// Start запускает воркер
func (w *ResolveWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting ResolveWorker (batch mode)",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("batch_size", w.batchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamGeofenceResolve, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// Основной цикл обработки
	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				time.Sleep(errorSleep)
				continue
			}

			// Если ничего не обработали - короткая пауза
			if processed == 0 {
				time.Sleep(emptyQueueSleep)
			}
		}
	}
}

// processBatch читает и обрабатывает пачку сообщений.
// Возвращает количество обработанных сообщений.
func (w *ResolveWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamGeofenceResolve,
		w.ConsumerGroup(),
		w.consumerName,
		w.batchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil // очередь пуста
	}

	logger.Info("Processing batch", zap.Int("message_count", len(messages)))

	processed := 0
	for _, msg := range messages {
		event, err := parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// ACK битое сообщение чтобы не застревало
			_ = w.streamRepo.AckMessage(ctx, domain.StreamGeofenceResolve, w.ConsumerGroup(), msg.ID)
			continue
		}

		done := w.resolve(ctx, event)

		if err := w.streamRepo.PublishToStream(ctx, domain.StreamGeofenceDone, done); err != nil {
			logger.Error("Failed to publish result, message will be redelivered",
				zap.String("message_id", msg.ID),
				zap.String("request_id", event.RequestID.String()),
				zap.Error(err))
			continue
		}

		if err := w.streamRepo.AckMessage(ctx, domain.StreamGeofenceResolve, w.ConsumerGroup(), msg.ID); err != nil {
			logger.Error("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}

		processed++
	}

	return processed, nil
}

// resolve выполняет определение региона для одного события
func (w *ResolveWorker) resolve(ctx context.Context, event *domain.GeofenceResolveEvent) *domain.GeofenceDoneEvent {
	done := &domain.GeofenceDoneEvent{RequestID: event.RequestID}

	result, err := w.locateUC.Locate(ctx, dto.LocateRequest{
		Lat: event.Latitude,
		Lon: event.Longitude,
	})

	switch {
	case err == nil:
		done.RegionID = &result.RegionID
		done.Attributes = result.Attributes
	case usecase.IsNotFound(err):
		done.NotFound = true
	default:
		done.Error = err.Error()
	}

	return done
}

func parseMessage(msg domain.StreamMessage) (*domain.GeofenceResolveEvent, error) {
	var event domain.GeofenceResolveEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.RequestID == uuid.Nil {
		return nil, fmt.Errorf("event has no request_id")
	}

	return &event, nil
}
