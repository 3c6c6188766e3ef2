// Package config loads the herald client configuration.
//
// The file lives at ~/.config/herald/config.toml unless a path is given. A
// missing file is not an error: Load returns Default. Fields left blank keep
// their defaults, and path fields are tilde-expanded and made absolute.
//
// Example:
//
//	endpoint = "https://api.example.org/graphql"
//	cache_backend = "sqlite"          # or "toml" (default)
//	cache_path = "~/.local/share/herald/cache.db"
//	recent_search_limit = 10
//	save_delay = "1s"
//	requests_per_second = 5
//	log_level = "debug"
//	log_file = "~/.local/state/herald/herald.log"
//	analytics_journal = "~/.local/state/herald/events.jsonl"
//	push_listen = "127.0.0.1:7490"
//	poll_interval = "5m"
//
// The default cache path depends on the backend: cache.toml next to the
// config file for "toml", cache.db under ~/.local/share/herald for "sqlite".
package config
