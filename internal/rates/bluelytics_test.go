package rates_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"applestore/internal/rates"
)

func TestBluelyticsFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"oficial":{"value_avg":1210,"value_sell":1230,"value_buy":1190},
			"blue":{"value_avg":1335,"value_sell":1345,"value_buy":1325},
			"last_update":"2025-01-01T00:00:00-03:00"}`))
	}))
	defer srv.Close()

	q := rates.NewBluelytics(srv.URL, time.Second, nil).Fetch(context.Background())
	assert.False(t, q.Fallback)
	assert.Equal(t, 1345.0, q.Blue)
	assert.Equal(t, 1230.0, q.Official)
}

func TestBluelyticsFallback(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"blue":`))
		},
		"missing quotes": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"oficial":{},"blue":{}}`))
		},
		"timeout": func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(`{"oficial":{"value_sell":1},"blue":{"value_sell":1}}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			q := rates.NewBluelytics(srv.URL, 50*time.Millisecond, nil).Fetch(context.Background())
			assert.True(t, q.Fallback)
			assert.Equal(t, 1300.0, q.Blue)
			assert.Equal(t, 1200.0, q.Official)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		q := rates.NewBluelytics("http://127.0.0.1:1", 50*time.Millisecond, nil).Fetch(context.Background())
		assert.True(t, q.Fallback)
	})
}
