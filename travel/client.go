package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/logging"
)

const (
	defaultBaseURL = "https://booking-com15.p.rapidapi.com"
	defaultAPIHost = "booking-com15.p.rapidapi.com"
)

// ClientOptions configures the travel API client.
type ClientOptions struct {
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
	// Host is sent as the X-RapidAPI-Host header.
	Host string
	// HTTPClient overrides the underlying transport.
	HTTPClient *http.Client
	// Logger receives request events.
	Logger logging.Logger
}

// Client talks to the booking-com15 RapidAPI endpoints used by the travel
// tools: flight search, location lookup, hotel search and attractions.
type Client struct {
	baseURL    string
	host       string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient constructs a Client authenticated with the given RapidAPI key.
func NewClient(apiKey string, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		BaseURL:    defaultBaseURL,
		Host:       defaultAPIHost,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{
		baseURL:    opts.BaseURL,
		host:       opts.Host,
		apiKey:     apiKey,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	c.logger.Debug("travel.api.request", "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("travel api request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read travel api response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("travel api %s returned status %d", path, resp.StatusCode)
	}
	return body, nil
}

// Coordinates is a latitude/longitude pair from the location lookup.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationCoordinates resolves a free-form place name to coordinates via the
// meta/locationToLatLong endpoint. Hotel search requires coordinates, so
// this is always the first of the two hotel lookup steps.
func (c *Client) LocationCoordinates(ctx context.Context, query string) (Coordinates, error) {
	params := url.Values{}
	params.Set("query", query)

	body, err := c.get(ctx, "/api/v1/meta/locationToLatLong", params)
	if err != nil {
		return Coordinates{}, err
	}
	first := gjson.GetBytes(body, "data.0.geometry.location")
	if !first.Exists() {
		return Coordinates{}, fmt.Errorf("no location data found for %q", query)
	}
	return Coordinates{
		Latitude:  first.Get("lat").Float(),
		Longitude: first.Get("lng").Float(),
	}, nil
}

// FlightLeg is one segment of a multi-stop flight query.
type FlightLeg struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
	Date   string `json:"date"`
}

// FlightQuery holds passenger and pricing options for a flight search.
type FlightQuery struct {
	Adults     int
	Children   string
	CabinClass string
	Currency   string
}

// FlightOption is a single offer summarized from the search response.
type FlightOption struct {
	OutboundFrom string  `json:"outbound_from"`
	OutboundTo   string  `json:"outbound_to"`
	OutboundTime string  `json:"outbound_time"`
	ReturnFrom   string  `json:"return_from,omitempty"`
	ReturnTo     string  `json:"return_to,omitempty"`
	ReturnTime   string  `json:"return_time,omitempty"`
	Airline      string  `json:"airline,omitempty"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
}

// SearchFlights queries flights/searchFlightsMultiStops for the given legs.
func (c *Client) SearchFlights(ctx context.Context, legs []FlightLeg, q FlightQuery) ([]FlightOption, error) {
	legsJSON, err := json.Marshal(legs)
	if err != nil {
		return nil, fmt.Errorf("encode flight legs: %w", err)
	}
	params := url.Values{}
	params.Set("legs", string(legsJSON))
	params.Set("adults", fmt.Sprintf("%d", q.Adults))
	params.Set("children", q.Children)
	params.Set("cabinClass", q.CabinClass)
	params.Set("currency_code", q.Currency)

	body, err := c.get(ctx, "/api/v1/flights/searchFlightsMultiStops", params)
	if err != nil {
		return nil, err
	}

	var options []FlightOption
	for _, offer := range gjson.GetBytes(body, "data.flightOffers").Array() {
		segments := offer.Get("segments").Array()
		if len(segments) == 0 {
			continue
		}
		opt := FlightOption{
			OutboundFrom: segments[0].Get("departureAirport.cityName").String(),
			OutboundTo:   segments[0].Get("arrivalAirport.cityName").String(),
			OutboundTime: segments[0].Get("legs.0.departureTime").String(),
			Airline:      offer.Get("priceBreakdown.carrierTaxBreakdown.0.carrier.name").String(),
			Price:        offer.Get("priceBreakdown.totalWithoutDiscountRounded.units").Float(),
			Currency:     offer.Get("priceBreakdown.totalWithoutDiscountRounded.currencyCode").String(),
		}
		if len(segments) > 1 {
			opt.ReturnFrom = segments[1].Get("departureAirport.cityName").String()
			opt.ReturnTo = segments[1].Get("arrivalAirport.cityName").String()
			opt.ReturnTime = segments[1].Get("legs.0.departureTime").String()
		}
		options = append(options, opt)
	}
	return options, nil
}

// HotelQuery holds guest and pricing options for a hotel search.
type HotelQuery struct {
	ArrivalDate   string
	DepartureDate string
	Adults        int
	ChildrenAges  string
	RoomQty       int
	Currency      string
}

// HotelOption is a single hotel summarized from the search response.
type HotelOption struct {
	Name            string  `json:"name"`
	ReviewScore     float64 `json:"review_score,omitempty"`
	ReviewScoreWord string  `json:"review_score_word,omitempty"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
}

// SearchHotels queries hotels/searchHotelsByCoordinates. Callers obtain the
// coordinates through LocationCoordinates first.
func (c *Client) SearchHotels(ctx context.Context, coords Coordinates, q HotelQuery) ([]HotelOption, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", coords.Latitude))
	params.Set("longitude", fmt.Sprintf("%f", coords.Longitude))
	params.Set("arrival_date", q.ArrivalDate)
	params.Set("departure_date", q.DepartureDate)
	params.Set("adults", fmt.Sprintf("%d", q.Adults))
	params.Set("children_age", q.ChildrenAges)
	params.Set("room_qty", fmt.Sprintf("%d", q.RoomQty))
	params.Set("currency_code", q.Currency)
	params.Set("units", "metric")
	params.Set("page_number", "1")
	params.Set("temperature_unit", "c")
	params.Set("languagecode", "en-us")

	body, err := c.get(ctx, "/api/v1/hotels/searchHotelsByCoordinates", params)
	if err != nil {
		return nil, err
	}
	if status := gjson.GetBytes(body, "status"); status.Exists() && !status.Bool() {
		return nil, fmt.Errorf("travel api error: %s", gjson.GetBytes(body, "message").String())
	}

	var options []HotelOption
	for _, hotel := range gjson.GetBytes(body, "data.result").Array() {
		options = append(options, HotelOption{
			Name:            hotel.Get("hotel_name").String(),
			ReviewScore:     hotel.Get("review_score").Float(),
			ReviewScoreWord: hotel.Get("review_score_word").String(),
			Price:           hotel.Get("min_total_price").Float(),
			Currency:        hotel.Get("currencycode").String(),
		})
	}
	return options, nil
}

// SearchAttractions queries attraction/searchLocation and returns the top
// attraction titles for the location.
func (c *Client) SearchAttractions(ctx context.Context, location string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("query", location)
	params.Set("languagecode", "en-us")

	body, err := c.get(ctx, "/api/v1/attraction/searchLocation", params)
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, product := range gjson.GetBytes(body, "data.products").Array() {
		if limit > 0 && len(titles) >= limit {
			break
		}
		if title := product.Get("title").String(); title != "" {
			titles = append(titles, title)
		}
	}
	return titles, nil
}
