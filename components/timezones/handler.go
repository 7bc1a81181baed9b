package timezones

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// optionItem is one select option in the wire shape the dataview loader and
// the codegen templates both understand.
type optionItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type itemsEnvelope struct {
	Items []optionItem `json:"items"`
}

// Handler returns the timezone search handler with default options.
func Handler() http.Handler {
	return HandlerWithOptions(DefaultOptions())
}

// HandlerWithOptions builds the handler. GET requests take a q query for
// search text and an optional limit; the response is an items envelope of
// label/value pairs.
func HandlerWithOptions(opts Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		zones := opts.Zones
		if len(zones) == 0 {
			loaded, err := DefaultZones()
			if err != nil {
				opts.Logger.Error().Err(err).Msg("timezone list unavailable")
				http.Error(w, "timezone list unavailable", http.StatusInternalServerError)
				return
			}
			zones = loaded
		}

		limit := opts.Limit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			if limit <= 0 || parsed < limit {
				limit = parsed
			}
		}

		matches := Search(zones, r.URL.Query().Get("q"), limit)
		items := make([]optionItem, len(matches))
		for i, zone := range matches {
			items[i] = optionItem{Label: zone, Value: zone}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(itemsEnvelope{Items: items}); err != nil {
			opts.Logger.Warn().Err(err).Msg("encode timezone response")
		}
	})
}
