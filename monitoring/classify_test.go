package monitoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	th := Thresholds{SuccessRate: 0.95, ResponseTimeMs: 5000}

	tests := []struct {
		name        string
		successRate float64
		latency     float64
		errorRate   float64
		want        Classification
	}{
		{"success - all good", 99, 200, 1, Healthy},
		{"success - below target", 94, 200, 6, Degraded},
		{"success - slow", 99, 6000, 1, Degraded},
		{"success - error rate above ten", 96, 200, 11, Degraded},
		{"success - far below target", 75, 200, 5, Unhealthy},
		{"success - very slow", 99, 10001, 1, Unhealthy},
		{"success - error rate above twenty", 96, 200, 21, Unhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyOverall(th, tt.successRate, tt.latency, tt.errorRate))
		})
	}

	t.Run("success - gateway multipliers are looser", func(t *testing.T) {
		assert.Equal(t, Healthy, ClassifyGateway(th, 90, 7000))
		assert.Equal(t, Degraded, ClassifyGateway(th, 85, 200))
		assert.Equal(t, Degraded, ClassifyGateway(th, 99, 7600))
		assert.Equal(t, Unhealthy, ClassifyGateway(th, 66, 200))
		assert.Equal(t, Unhealthy, ClassifyGateway(th, 99, 15001))
	})

	t.Run("success - json names", func(t *testing.T) {
		b, err := json.Marshal(map[string]any{"c": Degraded, "s": Critical, "t": ErrorRate})
		require.NoError(t, err)
		assert.JSONEq(t, `{"c":"degraded","s":"critical","t":"error_rate"}`, string(b))
	})

	t.Run("success - json round trip", func(t *testing.T) {
		var got struct {
			C Classification
			S Severity
			T AlertType
		}
		require.NoError(t, json.Unmarshal([]byte(`{"C":"unhealthy","S":"high","T":"volume"}`), &got))
		assert.Equal(t, Unhealthy, got.C)
		assert.Equal(t, High, got.S)
		assert.Equal(t, Volume, got.T)
	})

	t.Run("error - unknown names", func(t *testing.T) {
		var c Classification
		assert.Error(t, json.Unmarshal([]byte(`"fine"`), &c))
		var s Severity
		assert.Error(t, json.Unmarshal([]byte(`"urgent"`), &s))
		var at AlertType
		assert.Error(t, json.Unmarshal([]byte(`3`), &at))
	})
}
