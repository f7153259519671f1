package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCheckout(t *testing.T) {
	before := testutil.ToFloat64(checkouts.WithLabelValues("cart", "success"))
	RecordCheckout("cart", true)
	assert.Equal(t, before+1, testutil.ToFloat64(checkouts.WithLabelValues("cart", "success")))

	beforeRejected := testutil.ToFloat64(checkouts.WithLabelValues("subscription", "rejected"))
	RecordCheckout("subscription", false)
	assert.Equal(t, beforeRejected+1, testutil.ToFloat64(checkouts.WithLabelValues("subscription", "rejected")))
}

func TestObserveRequest_UnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", "GET", "404"))
	ObserveRequest("", http.MethodGet, http.StatusNotFound, 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", "GET", "404")))
}

func TestPromhttpExposure(t *testing.T) {
	RecordCateringRequest()
	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
