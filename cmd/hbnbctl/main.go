// Command hbnbctl runs maintenance tasks against the configured HBnB backends.
package main

import (
	"os"

	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		observability.GetLogger().Error().Err(err).Msg("hbnbctl failed")
		os.Exit(1)
	}
}
