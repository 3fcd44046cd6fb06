package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/folio/store/db/metric"
)

func TestValidateConfig(t *testing.T) {
	assert := assert.New(t)
	config := Config{}
	validateConfig(&config)
	assert.Equal(defaultTable, config.Table)
	assert.Equal(defaultMaxRetries, config.MaxRetries)

	config = Config{Table: "docs", MaxRetries: 7}
	validateConfig(&config)
	assert.Equal("docs", config.Table)
	assert.Equal(7, config.MaxRetries)
}

func TestNewDynamoDB(t *testing.T) {
	_, err := NewDynamoDB(Config{}, metric.NewMeasures(), nil)
	assert.ErrorIs(t, err, errNoRegion)

	client, err := NewDynamoDB(Config{
		Region:    "us-east-1",
		Endpoint:  "http://localhost:8000",
		AccessKey: "key",
		SecretKey: "secret",
	}, metric.NewMeasures(), nil)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestDynamoClient(t *testing.T) {
	assert := assert.New(t)
	m := new(mockService)
	client := &DynamoClient{s: m}
	ctx := context.Background()
	cc := &types.ConsumedCapacity{}
	dbErr := errors.New("boom")

	m.On("Put", testKey, testData).Return(cc, nil).Once()
	m.On("Get", testKey).Return([]byte(nil), false, cc, nil).Once()
	m.On("Delete", testKey).Return(cc, dbErr).Once()
	m.On("List", "data/pages/", 5).Return([]string{testKey}, cc, nil).Once()

	assert.NoError(client.Put(ctx, testKey, testData))

	data, found, err := client.Get(ctx, testKey)
	assert.Nil(data)
	assert.False(found)
	assert.NoError(err)

	assert.Equal(dbErr, client.Delete(ctx, testKey))

	keys, err := client.List(ctx, "data/pages/", 5)
	assert.NoError(err)
	assert.Equal([]string{testKey}, keys)

	m.AssertExpectations(t)
}
