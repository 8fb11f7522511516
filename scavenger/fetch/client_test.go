package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samgozman/morning-thread/pkg/errlvl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetJSON(t *testing.T) {
	type payload struct {
		Value float64 `json:"value"`
	}

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		want      float64
		wantKind  error
		wantLevel errlvl.ErrorLevel
	}{
		{
			name: "json served as javascript",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("content-type", "application/javascript; charset=utf-8")
				_, _ = w.Write([]byte(`{"value": 42.5}`))
			},
			want: 42.5,
		},
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantKind:  ErrProtocol,
			wantLevel: errlvl.ErrWarn,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>oops</html>`))
			},
			wantKind:  ErrParse,
			wantLevel: errlvl.ErrError,
		},
		{
			name: "slow upstream hits the client timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(time.Second):
				case <-r.Context().Done():
				}
			},
			wantKind:  ErrNetwork,
			wantLevel: errlvl.ErrWarn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(100 * time.Millisecond)
			var got payload
			err := c.GetJSON(context.Background(), "test", srv.URL, &got)
			if tt.wantKind == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got.Value)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.ErrorIs(t, err, tt.wantLevel)

			var fetchErr *Error
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, "test", fetchErr.Source())
		})
	}
}

func TestClient_Get_connectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(time.Second).Get(context.Background(), "closed", url)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestNewClient_defaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewClient(0).Timeout())
	assert.Equal(t, 3*time.Second, NewClient(3*time.Second).Timeout())
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "ok"},
		{name: "network", err: NetworkError("s", errors.New("dial")), want: "network"},
		{name: "protocol", err: ProtocolError("s", 500, "500 Internal Server Error"), want: "protocol"},
		{name: "parse", err: ParseError("s", errors.New("eof")), want: "parse"},
		{name: "schema", err: SchemaError("s", "Valute.USD"), want: "schema"},
		{name: "foreign error", err: errors.New("boom"), want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}
