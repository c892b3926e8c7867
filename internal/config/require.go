package config

import "log"

// MustNonEmpty aborts startup when a required env value is missing. A missing
// signing secret must be caught here, not at token issuance time.
func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
