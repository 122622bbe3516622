// Package logging configures the process-wide slog handler.
package logging

import (
	"log/slog"
	"os"

	"github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
)

// Init installs the default handler. Additional sinks can be routed here
// later without touching call sites.
func Init() {
	router := slogmulti.Router()

	router = router.Add(console.NewHandler(os.Stderr, &console.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	}))

	slog.SetDefault(slog.New(router.Handler()))
}
