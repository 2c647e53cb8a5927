package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/disasterlabs/beacon/collector/clients"
	"github.com/disasterlabs/beacon/model"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/sirupsen/logrus"
)

const (
	nominatimBase    = "https://nominatim.openstreetmap.org"
	geocoderTimeout  = 5 * time.Second
	geocodeUserAgent = "DisasterSignalPlatform/1.0"
)

// nominatimPlace is the raw Nominatim search result. lat/lon come back as
// strings and place_id as a number, hence the dedicated decode type.
type nominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type nominatimReverse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// Geocoder resolves free text place names against Nominatim. Every failure
// mode (timeout, non-200, unparsable body, zero matches) is reported as a
// nil result, never as an error.
type Geocoder struct {
	baseURL string
	client  *clients.HttpClient
}

func NewGeocoder() *Geocoder {
	return NewGeocoderWithBaseURL(nominatimBase)
}

func NewGeocoderWithBaseURL(baseURL string) *Geocoder {
	header := http.Header{}
	header.Set("User-Agent", geocodeUserAgent)
	return &Geocoder{
		baseURL: baseURL,
		client:  clients.NewHttpClient(header, []http.Cookie{}, geocoderTimeout),
	}
}

// Geocode returns the first match for locationName, or nil when the service
// errors or finds nothing.
func (g *Geocoder) Geocode(ctx context.Context, locationName string) *model.GeocodeResult {
	uri := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(locationName))

	var places []nominatimPlace
	if err := g.getJson(uri, &places); err != nil {
		Logger.Log.WithFields(logrus.Fields{"location_name": locationName}).
			Errorf("geocoding error: %v", err)
		return nil
	}
	if len(places) == 0 {
		Logger.Log.Warnf("no geocoding results for: %s", locationName)
		return nil
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		Logger.Log.Errorf("geocoding returned unparsable coordinates for: %s", locationName)
		return nil
	}

	result := &model.GeocodeResult{
		Lat:         lat,
		Lng:         lng,
		DisplayName: places[0].DisplayName,
		PlaceID:     places[0].PlaceID,
	}
	Logger.Log.WithFields(logrus.Fields{"location_name": locationName, "lat": result.Lat, "lng": result.Lng}).
		Info("geocoded location")
	return result
}

// ReverseGeocode maps coordinates back to a display address, nil on any
// failure.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat float64, lng float64) *model.ReverseGeocodeResult {
	uri := fmt.Sprintf("%s/reverse?lat=%f&lon=%f&format=json", g.baseURL, lat, lng)

	var decoded nominatimReverse
	if err := g.getJson(uri, &decoded); err != nil {
		Logger.Log.Errorf("reverse geocoding error: %v", err)
		return nil
	}
	if decoded.DisplayName == "" {
		return nil
	}
	return &model.ReverseGeocodeResult{
		DisplayName: decoded.DisplayName,
		Address:     decoded.Address,
	}
}

func (g *Geocoder) getJson(uri string, out interface{}) error {
	res, err := g.client.Get(uri)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
