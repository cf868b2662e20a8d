package dsp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ctvbid/ctvbid/errortypes"
	"github.com/ctvbid/ctvbid/logger"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	responses map[string]*openrtb2.BidResponse
	errs      map[string]error
	called    []string
}

func (s *fakeSender) Send(ctx context.Context, endpoint string, req *openrtb2.BidRequest) (*openrtb2.BidResponse, error) {
	s.called = append(s.called, endpoint)
	if err, ok := s.errs[endpoint]; ok {
		return nil, err
	}
	return s.responses[endpoint], nil
}

func withBid(price float64) *openrtb2.BidResponse {
	return &openrtb2.BidResponse{SeatBid: []openrtb2.SeatBid{{Bid: []openrtb2.Bid{{ID: "b", Price: price, AdM: "<VAST/>"}}}}}
}

func TestDispatchAll(t *testing.T) {
	testCases := []struct {
		description    string
		endpoints      []string
		sender         *fakeSender
		expectedCalls  []string
		expectedPrice  float64
		expectFailure  bool
		expectedErr    string
		expectAttempts int
	}{
		{
			description: "first usable endpoint wins",
			endpoints:   []string{"a", "b", "c", "d"},
			sender: &fakeSender{
				errs:      map[string]error{"a": errors.New("down"), "b": &errortypes.Timeout{Message: "slow"}},
				responses: map[string]*openrtb2.BidResponse{"c": withBid(3), "d": withBid(9)},
			},
			expectedCalls:  []string{"a", "b", "c"},
			expectedPrice:  3,
			expectAttempts: 3,
		},
		{
			description: "empty responses fail over",
			endpoints:   []string{"a", "b", "c"},
			sender: &fakeSender{
				responses: map[string]*openrtb2.BidResponse{
					"a": {ID: "x"},
					"b": {SeatBid: []openrtb2.SeatBid{{Seat: "empty"}}},
					"c": withBid(1),
				},
			},
			expectedCalls:  []string{"a", "b", "c"},
			expectedPrice:  1,
			expectAttempts: 3,
		},
		{
			description: "all empty",
			endpoints:   []string{"a", "b"},
			sender: &fakeSender{
				responses: map[string]*openrtb2.BidResponse{
					"a": {SeatBid: []openrtb2.SeatBid{}},
					"b": {SeatBid: []openrtb2.SeatBid{}},
				},
			},
			expectedCalls:  []string{"a", "b"},
			expectFailure:  true,
			expectedErr:    "no usable DSP response: a: DSP returned no bids; b: DSP returned no bids",
			expectAttempts: 2,
		},
		{
			description:    "nil response",
			endpoints:      []string{"a"},
			sender:         &fakeSender{},
			expectedCalls:  []string{"a"},
			expectFailure:  true,
			expectedErr:    "no usable DSP response: a: DSP returned no bids",
			expectAttempts: 1,
		},
		{
			description:    "no endpoints",
			sender:         &fakeSender{},
			expectFailure:  true,
			expectedErr:    "no usable DSP response",
			expectAttempts: 0,
		},
		{
			description: "single endpoint",
			endpoints:   []string{"only"},
			sender: &fakeSender{
				responses: map[string]*openrtb2.BidResponse{"only": withBid(2)},
			},
			expectedCalls:  []string{"only"},
			expectedPrice:  2,
			expectAttempts: 1,
		},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			me := newMetricsMock()
			dispatcher := NewDispatcher(test.sender, me, &logger.RecordingLogger{})

			resp, err := dispatcher.DispatchAll(context.Background(), test.endpoints, testBidRequest())
			assert.Equal(t, test.expectedCalls, test.sender.called)
			me.AssertCalled(t, "RecordDSPFailover", test.expectAttempts)
			if test.expectFailure {
				require.Error(t, err)
				assert.Equal(t, errortypes.DispatchFailureErrorCode, errortypes.ReadCode(err))
				assert.Equal(t, test.expectedErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expectedPrice, resp.SeatBid[0].Bid[0].Price)
		})
	}
}

func TestDispatchAllKeepsEachFailure(t *testing.T) {
	sender := &fakeSender{
		errs: map[string]error{
			"a": &errortypes.Timeout{Message: "slow"},
			"b": &errortypes.BadServerResponse{Message: "status 500", StatusCode: http.StatusInternalServerError},
		},
	}
	dispatcher := NewDispatcher(sender, newMetricsMock(), &logger.RecordingLogger{})

	_, err := dispatcher.DispatchAll(context.Background(), []string{"a", "b"}, testBidRequest())

	var failure *errortypes.DispatchFailure
	require.ErrorAs(t, err, &failure)
	require.Len(t, failure.Attempts, 2)
	assert.Equal(t, errortypes.TimeoutErrorCode, errortypes.ReadCode(failure.Attempts[0]))
	assert.Equal(t, errortypes.BadServerResponseErrorCode, errortypes.ReadCode(failure.Attempts[1]))
	assert.Equal(t, "no usable DSP response: a: slow; b: status 500", err.Error())
	assert.Equal(t, errortypes.DispatchFailureErrorCode, errortypes.ReadCode(err))

	var badResponse *errortypes.BadServerResponse
	require.ErrorAs(t, err, &badResponse)
	assert.Equal(t, http.StatusInternalServerError, badResponse.StatusCode)
}

func TestDispatchAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &fakeSender{responses: map[string]*openrtb2.BidResponse{"a": withBid(1)}}
	dispatcher := NewDispatcher(sender, newMetricsMock(), &logger.RecordingLogger{})

	_, err := dispatcher.DispatchAll(ctx, []string{"a"}, testBidRequest())
	assert.Equal(t, errortypes.DispatchFailureErrorCode, errortypes.ReadCode(err))
	assert.Empty(t, sender.called)
}

func TestDispatchAllOverHTTP(t *testing.T) {
	var callsA, callsB, callsC, callsD int32
	failing := func(calls *int32) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
	}
	serverA := failing(&callsA)
	defer serverA.Close()
	serverB := failing(&callsB)
	defer serverB.Close()
	serverC := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&callsC, 1)
		w.Write([]byte(bidResponseJSON))
	}))
	defer serverC.Close()
	serverD := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&callsD, 1)
		w.Write([]byte(bidResponseJSON))
	}))
	defer serverD.Close()

	me := newMetricsMock()
	log := &logger.RecordingLogger{}
	dispatcher := NewDispatcher(NewClient(http.DefaultClient, testDSPConfig(), me, log), me, log)

	resp, err := dispatcher.DispatchAll(context.Background(), []string{serverA.URL, serverB.URL, serverC.URL, serverD.URL}, testBidRequest())
	require.NoError(t, err)
	assert.Equal(t, "b1", resp.SeatBid[0].Bid[0].ID)

	assert.Equal(t, int32(3), atomic.LoadInt32(&callsA), "A is retried before failing over")
	assert.Equal(t, int32(3), atomic.LoadInt32(&callsB), "B is retried before failing over")
	assert.Equal(t, int32(1), atomic.LoadInt32(&callsC))
	assert.Equal(t, int32(0), atomic.LoadInt32(&callsD), "endpoints after the winner are never called")
	assert.Len(t, log.Messages("warn"), 2*3+2)
}
