package handler

import (
	"net/http"
	"testing"

	appconfigurator "github.com/shadecraft/backend/internal/application/configurator"
	"github.com/shadecraft/backend/internal/infrastructure/strategy"
	"github.com/shadecraft/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingHandler_Quote(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name          string
		body          string
		expectedCode  int
		expectedPrice string
		expectedErr   string
	}{
		{
			name:          "small shade pays the base price",
			body:          `{"product_id": "cellular-shade", "width": 24, "height": 36}`,
			expectedCode:  http.StatusOK,
			expectedPrice: "129.99",
		},
		{
			name:          "area multiplier and surcharges",
			body:          `{"product_id": "cellular-shade", "width": "42", "height": "60", "options": {"Control Type": "Motorized", "Light Blocker": "Full Blackout Kit"}}`,
			expectedCode:  http.StatusOK,
			expectedPrice: "403.31",
		},
		{
			name:         "non positive dimensions",
			body:         `{"product_id": "cellular-shade", "width": -1, "height": 36}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeInvalidDimension,
		},
		{
			name:         "unknown product",
			body:         `{"product_id": "shutter", "width": 24, "height": 36}`,
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name:         "missing product",
			body:         `{"width": 24, "height": 36}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/pricing/quote", tt.body)
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())

			var quote appconfigurator.QuoteResponse
			resp := decode(t, w, &quote)
			if tt.expectedErr != "" {
				assert.Equal(t, tt.expectedErr, resp.Error.Code)
				return
			}
			assert.True(t, quote.Price.Equal(decimal.RequireFromString(tt.expectedPrice)), "got %s", quote.Price)
			assert.Equal(t, "local", quote.PriceSource)
		})
	}
}

func TestPricingHandler_ListStrategies(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/pricing/strategies", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var infos []strategy.StrategyInfo
	resp := decode(t, w, &infos)
	assert.Equal(t, 1, resp.Meta.Total)
	require.Len(t, infos, 1)
	assert.Equal(t, strategy.PricingLocal, infos[0].Name)
	assert.True(t, infos[0].Default)

	t.Run("nil registry lists nothing", func(t *testing.T) {
		h := NewPricingHandler(env.pricing, nil)
		env.engine.GET("/strategies-empty", h.ListStrategies)

		w := env.do(t, http.MethodGet, "/strategies-empty", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, decode(t, w, nil).Meta.Total)
	})
}
