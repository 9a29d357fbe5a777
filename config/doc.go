// Package config loads pagable settings with Viper.
//
// Values come from a YAML, JSON or TOML file and may be overridden through
// PAGABLE_* environment variables (dots become underscores):
//
//	app_name: pagable
//	run_mode: release
//	logger:
//	  level: 4          # logrus level, 5 = debug
//	  format: json      # json | text
//	  output: stderr    # stdout | stderr | file
//	search:
//	  default_engine: elasticsearch   # elasticsearch | opensearch | memory
//	  index_prefix: acme-prod
//	  timeout: 5s
//	  elasticsearch:
//	    addresses: ["http://localhost:9200"]
//	  breaker:
//	    failure_threshold: 5
//	    timeout: 30s
//	paging:
//	  default_window: 10
//	  max_window: 2000
//	  track_total_hits: true
//
// Engine credentials are read from search.<engine>.* first and fall back to
// data.<engine>.* for older files.
package config
