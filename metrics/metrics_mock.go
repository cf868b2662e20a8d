package metrics

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordRequest mock
func (me *MetricsEngineMock) RecordRequest(labels Labels) {
	me.Called(labels)
}

// RecordRequestTime mock
func (me *MetricsEngineMock) RecordRequestTime(labels Labels, length time.Duration) {
	me.Called(labels, length)
}

// RecordDSPFailover mock
func (me *MetricsEngineMock) RecordDSPFailover(attempts int) {
	me.Called(attempts)
}

// RecordDSPRequest mock
func (me *MetricsEngineMock) RecordDSPRequest(labels DSPLabels) {
	me.Called(labels)
}

// RecordDSPTime mock
func (me *MetricsEngineMock) RecordDSPTime(dsp string, length time.Duration) {
	me.Called(dsp, length)
}

// RecordDSPRetry mock
func (me *MetricsEngineMock) RecordDSPRetry(dsp string) {
	me.Called(dsp)
}

// RecordWinningPrice mock
func (me *MetricsEngineMock) RecordWinningPrice(price float64) {
	me.Called(price)
}

// RecordConnectionAccept mock
func (me *MetricsEngineMock) RecordConnectionAccept(success bool) {
	me.Called(success)
}

// RecordConnectionClose mock
func (me *MetricsEngineMock) RecordConnectionClose(success bool) {
	me.Called(success)
}
