package travel

import (
	"fmt"
	"time"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/tool"
)

// Shared state keys written by the travel tools. Any agent in the session
// reads these to build on earlier findings.
const (
	StateKeyTrip         = "trip"
	StateKeyFlights      = "flight_options"
	StateKeyHotels       = "hotel_options"
	StateKeyAttractions  = "attractions"
	StateKeyBooking      = "booking"
	attractionsTopResult = 5
)

type flightSearchParams struct {
	FromCity      string  `json:"from_city" description:"Departure airport code, e.g. 'BLR.AIRPORT'"`
	ToCity        string  `json:"to_city" description:"Arrival airport code, e.g. 'SIN.AIRPORT'"`
	DepartureDate string  `json:"departure_date" description:"Departure date in YYYY-MM-DD format"`
	ReturnDate    string  `json:"return_date" description:"Return date in YYYY-MM-DD format"`
	Adults        *int    `json:"adults,omitempty" description:"Number of adult passengers, default 1"`
	Children      *string `json:"children,omitempty" description:"Children ages, e.g. '0,17'"`
	CabinClass    *string `json:"cabin_class,omitempty" description:"ECONOMY, PREMIUM_ECONOMY, BUSINESS or FIRST"`
	Currency      *string `json:"currency,omitempty" description:"Currency code, default USD"`
}

// NewFlightSearchTool searches round-trip flights and records the offers
// under the flight_options state key.
func NewFlightSearchTool(client *Client) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"search_flights",
		"Search for round-trip flights between two airports with dates, passengers and cabin preferences.",
		flightSearchParams{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			legs := []FlightLeg{
				{FromID: stringArg(args, "from_city", ""), ToID: stringArg(args, "to_city", ""), Date: stringArg(args, "departure_date", "")},
				{FromID: stringArg(args, "to_city", ""), ToID: stringArg(args, "from_city", ""), Date: stringArg(args, "return_date", "")},
			}
			q := FlightQuery{
				Adults:     intArg(args, "adults", 1),
				Children:   stringArg(args, "children", "0,17"),
				CabinClass: stringArg(args, "cabin_class", "ECONOMY"),
				Currency:   stringArg(args, "currency", "USD"),
			}
			options, err := client.SearchFlights(tc.Context(), legs, q)
			if err != nil {
				return nil, err
			}
			if len(options) == 0 {
				return "No flights found.", nil
			}
			if _, err := tc.SetState(StateKeyFlights, map[string]any{
				"options": options,
				"route":   fmt.Sprintf("%s -> %s", legs[0].FromID, legs[0].ToID),
			}); err != nil {
				return nil, err
			}
			return options, nil
		},
	)
}

type hotelSearchParams struct {
	Location     string  `json:"location" description:"City or location name, e.g. 'Singapore'"`
	CheckInDate  *string `json:"check_in_date,omitempty" description:"Check-in date in YYYY-MM-DD format, defaults to tomorrow"`
	CheckOutDate *string `json:"check_out_date,omitempty" description:"Check-out date in YYYY-MM-DD format, defaults to the day after tomorrow"`
	Adults       *int    `json:"adults,omitempty" description:"Number of adults, default 1"`
	ChildrenAge  *string `json:"children_age,omitempty" description:"Children ages, e.g. '5,12'"`
	RoomQty      *int    `json:"room_qty,omitempty" description:"Number of rooms, default 1"`
	CurrencyCode *string `json:"currency_code,omitempty" description:"Currency code, default EUR"`
}

// NewHotelSearchTool resolves the location to coordinates and searches
// hotels around them, recording the offers under the hotel_options key.
func NewHotelSearchTool(client *Client) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"search_hotels",
		"Search for hotels in a location with dates, guests and room preferences.",
		hotelSearchParams{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			location := stringArg(args, "location", "")
			coords, err := client.LocationCoordinates(tc.Context(), location)
			if err != nil {
				return nil, err
			}
			q := HotelQuery{
				ArrivalDate:   stringArg(args, "check_in_date", time.Now().AddDate(0, 0, 1).Format("2006-01-02")),
				DepartureDate: stringArg(args, "check_out_date", time.Now().AddDate(0, 0, 2).Format("2006-01-02")),
				Adults:        intArg(args, "adults", 1),
				ChildrenAges:  stringArg(args, "children_age", "0,17"),
				RoomQty:       intArg(args, "room_qty", 1),
				Currency:      stringArg(args, "currency_code", "EUR"),
			}
			options, err := client.SearchHotels(tc.Context(), coords, q)
			if err != nil {
				return nil, err
			}
			if len(options) == 0 {
				return fmt.Sprintf("No hotels found in %s for the specified dates.", location), nil
			}
			if _, err := tc.SetState(StateKeyHotels, map[string]any{
				"location": location,
				"options":  options,
			}); err != nil {
				return nil, err
			}
			return options, nil
		},
	)
}

type attractionSearchParams struct {
	Location string `json:"location" description:"City or location name to find attractions in"`
}

// NewAttractionSearchTool lists the top attractions for a location and
// records them under the attractions state key.
func NewAttractionSearchTool(client *Client) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"search_attractions",
		"Search for tourist attractions in a given location.",
		attractionSearchParams{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			location := stringArg(args, "location", "")
			titles, err := client.SearchAttractions(tc.Context(), location, attractionsTopResult)
			if err != nil {
				return nil, err
			}
			if len(titles) == 0 {
				return "No attractions found for the specified location.", nil
			}
			if _, err := tc.SetState(StateKeyAttractions, map[string]any{
				"location": location,
				"titles":   titles,
			}); err != nil {
				return nil, err
			}
			return titles, nil
		},
	)
}

type saveTripParams struct {
	Destination string  `json:"destination" description:"Main destination city or region for the trip"`
	Origin      *string `json:"origin,omitempty" description:"Where the traveler departs from"`
	StartDate   *string `json:"start_date,omitempty" description:"Trip start date in YYYY-MM-DD format"`
	EndDate     *string `json:"end_date,omitempty" description:"Trip end date in YYYY-MM-DD format"`
	Budget      *string `json:"budget,omitempty" description:"Approximate budget, e.g. '2000 USD'"`
	Travelers   *int    `json:"travelers,omitempty" description:"Number of travelers, default 1"`
}

// NewSaveTripDetailsTool records the trip facts every specialist relies on.
// Saving a destination is what makes the advisory agents eligible.
func NewSaveTripDetailsTool() *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"save_trip_details",
		"Record the traveler's trip facts (destination, dates, budget) so other specialists can use them.",
		saveTripParams{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			data := map[string]any{
				"destination": stringArg(args, "destination", ""),
				"origin":      stringArg(args, "origin", ""),
				"start_date":  stringArg(args, "start_date", ""),
				"end_date":    stringArg(args, "end_date", ""),
				"budget":      stringArg(args, "budget", ""),
				"travelers":   intArg(args, "travelers", 1),
			}
			version, err := tc.SetState(StateKeyTrip, data)
			if err != nil {
				return nil, err
			}
			return map[string]any{"saved": true, "version": version}, nil
		},
	)
}

type confirmBookingParams struct {
	FlightSummary *string `json:"flight_summary,omitempty" description:"The chosen flight option, summarized"`
	HotelName     *string `json:"hotel_name,omitempty" description:"The chosen hotel"`
	TotalPrice    *string `json:"total_price,omitempty" description:"Total price of the booking"`
	Notes         *string `json:"notes,omitempty" description:"Anything else to record with the booking"`
}

// NewConfirmBookingTool records the traveler's final choice and hands the
// conversation back to the orchestrator.
func NewConfirmBookingTool() *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"confirm_booking",
		"Confirm the traveler's chosen flight and hotel and close out the planning conversation.",
		confirmBookingParams{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			data := map[string]any{
				"flight_summary": stringArg(args, "flight_summary", ""),
				"hotel_name":     stringArg(args, "hotel_name", ""),
				"total_price":    stringArg(args, "total_price", ""),
				"notes":          stringArg(args, "notes", ""),
				"confirmed_at":   time.Now().UTC().Format(time.RFC3339),
			}
			if _, err := tc.SetState(StateKeyBooking, data); err != nil {
				return nil, err
			}
			tc.SignalRelinquish()
			return map[string]any{"confirmed": true}, nil
		},
	)
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
