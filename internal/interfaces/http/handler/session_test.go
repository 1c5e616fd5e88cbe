package handler

import (
	"net/http"
	"testing"

	appconfigurator "github.com/shadecraft/backend/internal/application/configurator"
	"github.com/shadecraft/backend/internal/domain/configurator"
	"github.com/shadecraft/backend/internal/interfaces/http/dto"
	"github.com/shadecraft/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionsPath = "/api/v1/configurator/sessions"

func startSession(t *testing.T, env *testEnv) appconfigurator.SessionView {
	t.Helper()
	w := env.do(t, http.MethodPost, sessionsPath, map[string]string{"product_id": "cellular-shade"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var view appconfigurator.SessionView
	decode(t, w, &view)
	require.NotEmpty(t, view.ID)
	return view
}

func TestSessionHandler_Start(t *testing.T) {
	env := newTestEnv(t)

	t.Run("seeds defaults and prices immediately", func(t *testing.T) {
		view := startSession(t, env)

		assert.Equal(t, "cellular-shade", view.ProductID)
		assert.Equal(t, 12, view.Width.Whole)
		assert.Equal(t, "0", view.Width.Fraction)
		assert.Equal(t, "Cordless", view.Options["Control Type"])
		assert.Equal(t, "White", view.Options["Color"])
		assert.Equal(t, 1, view.Quantity)
		require.NotNil(t, view.Price)
		assert.True(t, view.Price.Equal(decimal.RequireFromString("159.99")), "got %s", view.Price)
		assert.Equal(t, "local", view.PriceSource)
		assert.Empty(t, view.MissingOptions)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := env.do(t, http.MethodPost, sessionsPath, map[string]string{"product_id": "venetian-blind"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing product id", func(t *testing.T) {
		w := env.do(t, http.MethodPost, sessionsPath, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decode(t, w, nil).Error.Code)
	})
}

func TestSessionHandler_Dimensions(t *testing.T) {
	env := newTestEnv(t)
	view := startSession(t, env)
	base := sessionsPath + "/" + view.ID

	tests := []struct {
		name          string
		path          string
		body          string
		expectedCode  int
		expectedWhole int
		expectedFrac  string
	}{
		{"width with label fraction", "/width", `{"whole": 42, "fraction": "3/8"}`, http.StatusOK, 42, "0.375"},
		{"width with decimal fraction", "/width", `{"whole": "42", "fraction": "0.5"}`, http.StatusOK, 42, "0.5"},
		{"width above maximum clamps", "/width", `{"whole": 500}`, http.StatusOK, 96, "0"},
		{"non numeric whole resolves to minimum", "/width", `{"whole": "abc"}`, http.StatusOK, 12, "0"},
		{"height", "/height", `{"whole": 60, "fraction": "7/8"}`, http.StatusOK, 60, "0.875"},
		{"invalid fraction", "/width", `{"whole": 42, "fraction": "1/3"}`, http.StatusBadRequest, 0, ""},
		{"malformed body", "/height", `{"whole":`, http.StatusBadRequest, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPut, base+tt.path, tt.body)
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.expectedCode != http.StatusOK {
				return
			}

			var got appconfigurator.SessionView
			decode(t, w, &got)
			dim := got.Width
			if tt.path == "/height" {
				dim = got.Height
			}
			assert.Equal(t, tt.expectedWhole, dim.Whole)
			assert.Equal(t, tt.expectedFrac, dim.Fraction)
		})
	}

	t.Run("rejected fraction leaves state unchanged", func(t *testing.T) {
		w := env.do(t, http.MethodPut, base+"/width", `{"whole": 30}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPut, base+"/width", `{"whole": 50, "fraction": "2/3"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, http.MethodGet, base, nil)
		var got appconfigurator.SessionView
		decode(t, w, &got)
		assert.Equal(t, 30, got.Width.Whole)
	})

	t.Run("unknown session", func(t *testing.T) {
		w := env.do(t, http.MethodPut, sessionsPath+"/nope/width", `{"whole": 42}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSessionHandler_PricesFromLocalFormula(t *testing.T) {
	env := newTestEnv(t)
	view := startSession(t, env)
	base := sessionsPath + "/" + view.ID

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, base+"/width", `{"whole": 42}`).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, base+"/height", `{"whole": 60}`).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, base+"/options", `{"name": "Control Type", "value": "Motorized"}`).Code)
	w := env.do(t, http.MethodPut, base+"/options", `{"name": "Light Blocker", "value": "Full Blackout Kit"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got appconfigurator.SessionView
	decode(t, w, &got)
	require.NotNil(t, got.Price)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("403.31")), "got %s", got.Price)
	seq := got.PriceSequence

	t.Run("quantity changes the total without repricing", func(t *testing.T) {
		w := env.do(t, http.MethodPut, base+"/quantity", `{"quantity": 3}`)
		require.Equal(t, http.StatusOK, w.Code)

		var got appconfigurator.SessionView
		decode(t, w, &got)
		assert.Equal(t, 3, got.Quantity)
		assert.Equal(t, seq, got.PriceSequence)
		require.NotNil(t, got.Total)
		assert.True(t, got.Total.Equal(decimal.RequireFromString("1209.93")), "got %s", got.Total)
	})

	t.Run("quantity below one becomes one", func(t *testing.T) {
		w := env.do(t, http.MethodPut, base+"/quantity", `{"quantity": 0}`)
		var got appconfigurator.SessionView
		decode(t, w, &got)
		assert.Equal(t, 1, got.Quantity)
	})
}

func TestSessionHandler_SaveAndLoad(t *testing.T) {
	env := newTestEnv(t)
	view := startSession(t, env)
	base := sessionsPath + "/" + view.ID

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, base+"/width", `{"whole": 36, "fraction": "1/4"}`).Code)
	w := env.do(t, http.MethodPost, base+"/save", `{"name": "Kitchen"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var saved appconfigurator.ConfigurationResponse
	decode(t, w, &saved)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Kitchen", saved.Name)
	assert.True(t, saved.Width.Equal(decimal.RequireFromString("36.25")))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, base+"/width", `{"whole": 80}`).Code)

	w = env.do(t, http.MethodPost, base+"/load/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loaded appconfigurator.SessionView
	decode(t, w, &loaded)
	assert.Equal(t, 36, loaded.Width.Whole)
	assert.Equal(t, "0.25", loaded.Width.Fraction)
	assert.Equal(t, `36 1/4"`, loaded.Width.Label)

	t.Run("empty name is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/save", `{"name": ""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("load of a missing configuration", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/load/does-not-exist", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSessionHandler_Comparison(t *testing.T) {
	env := newTestEnv(t)
	view := startSession(t, env)
	base := sessionsPath + "/" + view.ID

	ids := make([]string, 0, 4)
	for _, name := range []string{"One", "Two", "Three", "Four"} {
		w := env.do(t, http.MethodPost, base+"/save", map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, w.Code)
		var saved appconfigurator.ConfigurationResponse
		decode(t, w, &saved)
		ids = append(ids, saved.ID)
	}

	for _, id := range ids[:configurator.MaxComparisons] {
		w := env.do(t, http.MethodPost, base+"/compare/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	t.Run("fourth selection is refused", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/compare/"+ids[3], nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var current appconfigurator.SessionView
		resp := decode(t, w, &current)
		assert.Equal(t, dto.ErrCodeComparisonLimit, resp.Error.Code)
		assert.Equal(t, ids[:3], current.Comparing)
	})

	t.Run("table holds the current row and the selections", func(t *testing.T) {
		w := env.do(t, http.MethodGet, base+"/compare", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var table appconfigurator.ComparisonResponse
		resp := decode(t, w, &table)
		require.Len(t, table.Rows, 4)
		assert.True(t, table.Rows[0].Current)
		assert.Equal(t, 4, resp.Meta.Total)
		assert.Empty(t, resp.Meta.Notice)
	})

	t.Run("deselect frees a slot", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, base+"/compare/"+ids[0], nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, base+"/compare/"+ids[3], nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got appconfigurator.SessionView
		decode(t, w, &got)
		assert.Equal(t, []string{ids[1], ids[2], ids[3]}, got.Comparing)
	})

	t.Run("deleted selections are reported", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/configurations/"+ids[1], nil).Code)

		w := env.do(t, http.MethodGet, base+"/compare", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var table appconfigurator.ComparisonResponse
		resp := decode(t, w, &table)
		assert.Len(t, table.Rows, 3)
		assert.Equal(t, []string{ids[1]}, table.Missing)
		assert.NotEmpty(t, resp.Meta.Notice)
	})

	t.Run("selecting an unknown configuration", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base+"/compare/unknown", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSessionHandler_AddToCart(t *testing.T) {
	env := newTestEnv(t)

	t.Run("complete selection is accepted", func(t *testing.T) {
		view := startSession(t, env)
		w := env.do(t, http.MethodPost, sessionsPath+"/"+view.ID+"/cart", nil)
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

		var item configurator.CartItem
		decode(t, w, &item)
		assert.Equal(t, "cellular-shade", item.ProductID)
		assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("159.99")))
	})

	t.Run("missing option is refused", func(t *testing.T) {
		view := startSession(t, env)
		base := sessionsPath + "/" + view.ID
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, base+"/options", `{"name": "Color", "value": ""}`).Code)

		w := env.do(t, http.MethodPost, base+"/cart", nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeIncompleteSelection, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "Color")
	})

	t.Run("repeated idempotency key", func(t *testing.T) {
		view := startSession(t, env)
		path := sessionsPath + "/" + view.ID + "/cart"

		w := env.do(t, http.MethodPost, path, nil, middleware.IdempotencyKeyHeader, "checkout-1")
		require.Equal(t, http.StatusAccepted, w.Code)

		w = env.do(t, http.MethodPost, path, nil, middleware.IdempotencyKeyHeader, "checkout-1")
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeDuplicateRequest, decode(t, w, nil).Error.Code)

		w = env.do(t, http.MethodPost, path, nil, middleware.IdempotencyKeyHeader, "checkout-2")
		assert.Equal(t, http.StatusAccepted, w.Code)
	})
}

func TestSessionHandler_End(t *testing.T) {
	env := newTestEnv(t)
	view := startSession(t, env)
	base := sessionsPath + "/" + view.ID

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, base, nil).Code)
}
