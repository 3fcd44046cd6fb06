package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

type loggingService struct {
	service
	logger *zap.Logger
}

func newLoggingService(logger *zap.Logger, s service) service {
	return &loggingService{service: s, logger: logger}
}

func (s *loggingService) List(ctx context.Context, prefix string, max int) (keys []string, consumedCapacity *types.ConsumedCapacity, err error) {
	defer func() {
		s.logger.Debug("dynamodb list", zap.Int("keysSize", len(keys)), zap.Error(err), zap.String("prefix", prefix))
	}()
	keys, consumedCapacity, err = s.service.List(ctx, prefix, max)
	return
}
