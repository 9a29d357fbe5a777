package config

import "github.com/spf13/viper"

// Paging holds paginator settings
type Paging struct {
	DefaultWindow int `json:"default_window" yaml:"default_window" validate:"gte=0"`
	MaxWindow     int `json:"max_window" yaml:"max_window" validate:"gte=0"`
	// TrackTotalHits is forwarded to the backend: true, false or a threshold.
	TrackTotalHits any `json:"track_total_hits" yaml:"track_total_hits"`
}

func getPagingConfig(v *viper.Viper) *Paging {
	p := &Paging{
		DefaultWindow: getIntOrDefault(v, "paging.default_window", 10),
		MaxWindow:     getIntOrDefault(v, "paging.max_window", 2000),
	}
	if v.IsSet("paging.track_total_hits") {
		raw := v.Get("paging.track_total_hits")
		switch t := raw.(type) {
		case bool:
			p.TrackTotalHits = t
		case string:
			if t == "true" || t == "false" {
				p.TrackTotalHits = t == "true"
			} else {
				p.TrackTotalHits = v.GetInt("paging.track_total_hits")
			}
		default:
			p.TrackTotalHits = v.GetInt("paging.track_total_hits")
		}
	}
	return p
}
