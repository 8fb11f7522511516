package weather

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samgozman/morning-thread/scavenger/fetch"
	"github.com/samgozman/morning-thread/utils"
)

const (
	// DefaultURL is the OpenWeatherMap current weather endpoint.
	DefaultURL = "https://api.openweathermap.org/data/2.5/weather"
	// DefaultLocation is the place the report is built for.
	DefaultLocation = "Krasnoyarsk,RU"
	// Placeholder replaces the section when the weather can't be fetched.
	Placeholder = "Ошибка при получении погоды."

	sourceName = "owm:current"
)

// conditionTranslations maps OpenWeatherMap detailed statuses to Russian.
var conditionTranslations = map[string]string{
	"clear sky":            "Ясно",
	"few clouds":           "Небольшая облачность",
	"scattered clouds":     "Рассеянные облака",
	"broken clouds":        "Облачно с прояснениями",
	"overcast clouds":      "Пасмурно",
	"light rain":           "Небольшой дождь",
	"moderate rain":        "Умеренный дождь",
	"heavy intensity rain": "Сильный дождь",
	"thunderstorm":         "Гроза",
	"snow":                 "Снег",
	"mist":                 "Туман",
	"haze":                 "Дымка",
	"fog":                  "Туман",
}

// TranslateCondition returns the Russian name of the condition,
// or the condition itself when there is no translation. Keys match exactly, as OpenWeatherMap sends them.
func TranslateCondition(condition string) string {
	if t, ok := conditionTranslations[condition]; ok {
		return t
	}
	return condition
}

// Report is the current weather at a location.
type Report struct {
	TemperatureC float64
	Condition    string // already translated
}

// Format renders the report for the chat message.
func (r *Report) Format() string {
	return fmt.Sprintf("Температура: %s°C\nСостояние: %s", utils.FormatNumber(r.TemperatureC), r.Condition)
}

// Fetcher gets current weather conditions for a fixed location.
type Fetcher struct {
	URL      string
	Location string
	apiKey   string
	client   *fetch.Client
}

// NewFetcher creates a new Fetcher. The API key is required by OpenWeatherMap.
func NewFetcher(apiURL, location, apiKey string, client *fetch.Client) *Fetcher {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if location == "" {
		location = DefaultLocation
	}
	return &Fetcher{
		URL:      apiURL,
		Location: location,
		apiKey:   apiKey,
		client:   client,
	}
}

// Fetch requests the current observation and translates its condition.
func (f *Fetcher) Fetch(ctx context.Context) (*Report, error) {
	q := url.Values{}
	q.Set("q", f.Location)
	q.Set("appid", f.apiKey)
	q.Set("units", "metric")

	var obs owmObservation
	if err := f.client.GetJSON(ctx, sourceName, f.URL+"?"+q.Encode(), &obs); err != nil {
		return nil, err
	}
	if obs.Main.Temp == nil {
		return nil, fetch.SchemaError(sourceName, "main.temp")
	}
	if len(obs.Weather) == 0 || obs.Weather[0].Description == "" {
		return nil, fetch.SchemaError(sourceName, "weather[0].description")
	}

	return &Report{
		TemperatureC: *obs.Main.Temp,
		Condition:    TranslateCondition(obs.Weather[0].Description),
	}, nil
}

// Brief fetches the weather and renders it for the report.
func (f *Fetcher) Brief(ctx context.Context) (string, error) {
	r, err := f.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return r.Format(), nil
}

// owmObservation is the subset of the OpenWeatherMap current weather answer we need.
type owmObservation struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Name string `json:"name"`
}
