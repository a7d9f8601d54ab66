package logging

import (
	"bufio"
	"io"

	"github.com/rs/zerolog"
)

// PipeLines turns a stream into per-line log events at the given level,
// tagged with the supplied fields. Used to surface subprocess diagnostic
// output without interleaving raw bytes into the log stream. Blocks until
// r reaches EOF; run it in its own goroutine.
func PipeLines(r io.Reader, logger zerolog.Logger, level zerolog.Level, fields map[string]string) {
	ctx := logger.With()
	for k, v := range fields {
		ctx = ctx.Str(k, v)
	}
	tagged := ctx.Logger()

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		tagged.WithLevel(level).Msg(sc.Text())
	}
}
