package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/xmidt-org/folio/store"
	"github.com/xmidt-org/folio/store/db/metric"
)

type instrumentingService struct {
	service
	measures metric.Measures
}

func newInstrumentingService(measures metric.Measures, s service) service {
	return &instrumentingService{measures: measures, service: s}
}

func (s *instrumentingService) Put(ctx context.Context, key string, data []byte) (consumedCapacity *types.ConsumedCapacity, err error) {
	defer func() { s.updateWrite(consumedCapacity, store.InsertType) }()
	return s.service.Put(ctx, key, data)
}

func (s *instrumentingService) Get(ctx context.Context, key string) (data []byte, found bool, consumedCapacity *types.ConsumedCapacity, err error) {
	defer func() { s.updateRead(consumedCapacity, store.ReadType) }()
	return s.service.Get(ctx, key)
}

func (s *instrumentingService) Delete(ctx context.Context, key string) (consumedCapacity *types.ConsumedCapacity, err error) {
	defer func() { s.updateWrite(consumedCapacity, store.DeleteType) }()
	return s.service.Delete(ctx, key)
}

func (s *instrumentingService) List(ctx context.Context, prefix string, max int) (keys []string, consumedCapacity *types.ConsumedCapacity, err error) {
	defer func() { s.updateRead(consumedCapacity, store.ListType) }()
	return s.service.List(ctx, prefix, max)
}

// Total consumption only fills CapacityUnits, so it is attributed to the
// read or write counter by operation.
func (s *instrumentingService) updateRead(cc *types.ConsumedCapacity, queryType string) {
	if cc == nil {
		return
	}
	units := cc.ReadCapacityUnits
	if units == nil {
		units = cc.CapacityUnits
	}
	if units != nil {
		s.measures.ReadCapacityUnitConsumedCount.WithLabelValues(queryType).Add(*units)
	}
}

func (s *instrumentingService) updateWrite(cc *types.ConsumedCapacity, queryType string) {
	if cc == nil {
		return
	}
	units := cc.WriteCapacityUnits
	if units == nil {
		units = cc.CapacityUnits
	}
	if units != nil {
		s.measures.WriteCapacityUnitConsumedCount.WithLabelValues(queryType).Add(*units)
	}
}
