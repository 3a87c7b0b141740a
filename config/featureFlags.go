package config

import (
	"os"
	"strings"
)

// RequirePrintBeforeSave turns on the advisory print gate for purchase carts.
// Finalize still succeeds without printing; the server only logs a warning.
//
// Set via env:
// - REQUIRE_PRINT_BEFORE_SAVE=true
func RequirePrintBeforeSave() bool {
	return envBool("REQUIRE_PRINT_BEFORE_SAVE")
}

// StrictOpeningStock rejects openings above the available quantity instead of
// asking the user to confirm.
//
// Set via env:
// - STRICT_OPENING_STOCK=true
func StrictOpeningStock() bool {
	return envBool("STRICT_OPENING_STOCK")
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
