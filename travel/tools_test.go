package travel

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
)

func newToolContext(t *testing.T) (*core.ToolContext, *core.SharedState) {
	t.Helper()
	state := core.NewSharedState()
	return core.NewToolContext(context.Background(), "s1", state, "travel_planner", core.NewID(), nil), state
}

func TestHotelSearchTool_WritesStateKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/meta/locationToLatLong":
			w.Write([]byte(`{"data": [{"geometry": {"location": {"lat": 1.29, "lng": 103.85}}}]}`))
		default:
			w.Write([]byte(`{"status": true, "data": {"result": [
				{"hotel_name": "Marina Bay Sands", "review_score": 9.1, "min_total_price": 450, "currencycode": "EUR"}
			]}}`))
		}
	})

	ft := NewHotelSearchTool(client)
	tc, state := newToolContext(t)

	out, err := ft.Call(tc, map[string]any{"location": "Singapore"})
	require.NoError(t, err)
	options, ok := out.([]HotelOption)
	require.True(t, ok)
	assert.Equal(t, "Marina Bay Sands", options[0].Name)

	stored, ok := state.Get(StateKeyHotels)
	require.True(t, ok)
	assert.Equal(t, "Singapore", stored.Data["location"])
	assert.Equal(t, "travel_planner", stored.UpdatedBy)
}

func TestFlightSearchTool_RequiresArgs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(flightsResponse))
	})
	ft := NewFlightSearchTool(client)
	tc, _ := newToolContext(t)

	_, err := ft.Call(tc, map[string]any{"from_city": "BLR.AIRPORT"})
	require.Error(t, err, "missing required arguments must fail validation")

	out, err := ft.Call(tc, map[string]any{
		"from_city":      "BLR.AIRPORT",
		"to_city":        "SIN.AIRPORT",
		"departure_date": "2026-09-10",
		"return_date":    "2026-09-20",
	})
	require.NoError(t, err)
	options, ok := out.([]FlightOption)
	require.True(t, ok)
	assert.Len(t, options, 1)
}

func TestSaveTripDetailsTool_EnablesAdvisors(t *testing.T) {
	ft := NewSaveTripDetailsTool()
	tc, state := newToolContext(t)

	assert.False(t, hasTrip(state.Snapshot()))

	_, err := ft.Call(tc, map[string]any{"destination": "Singapore", "travelers": float64(2)})
	require.NoError(t, err)

	snap := state.Snapshot()
	assert.True(t, hasTrip(snap))
	trip, _ := snap.Get(StateKeyTrip)
	assert.Equal(t, "Singapore", trip.Data["destination"])
	assert.Equal(t, 2, trip.Data["travelers"])
}

func TestConfirmBookingTool_SignalsRelinquish(t *testing.T) {
	ft := NewConfirmBookingTool()
	tc, state := newToolContext(t)

	_, err := ft.Call(tc, map[string]any{"hotel_name": "Marina Bay Sands"})
	require.NoError(t, err)

	assert.True(t, tc.RelinquishSignaled())
	booking, ok := state.Get(StateKeyBooking)
	require.True(t, ok)
	assert.Equal(t, "Marina Bay Sands", booking.Data["hotel_name"])
}
