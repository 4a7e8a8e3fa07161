package feeds

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

type WeatherReport struct {
	TempC       float64 `json:"temp_c"`
	Description string  `json:"description"`
}

func (w WeatherReport) String() string {
	return fmt.Sprintf("%.1f°C, %s", w.TempC, w.Description)
}

type openWeatherResp struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Weather fetches current conditions for a city query like "Minsk,BY".
func (c *Client) Weather(ctx context.Context, city string) (WeatherReport, error) {
	return cached(ctx, c, "feeds:weather:"+city, 10*time.Minute, func() (WeatherReport, error) {
		u := fmt.Sprintf("%s/data/2.5/weather?q=%s&appid=%s&units=metric",
			c.WeatherBaseURL, url.QueryEscape(city), url.QueryEscape(c.WeatherAPIKey))

		var decoded openWeatherResp
		if err := c.getJSON(ctx, u, nil, &decoded); err != nil {
			return WeatherReport{}, err
		}
		r := WeatherReport{TempC: decoded.Main.Temp}
		if len(decoded.Weather) > 0 {
			r.Description = decoded.Weather[0].Description
		}
		return r, nil
	})
}
