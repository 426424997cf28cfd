package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/iract/pkg/utils/logging"
)

// maxDrain bounds how much of an unread response body is discarded before close
const maxDrain = 64 << 10

// Close closes c and logs a failure. A nil closer is a no-op.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("close failed", slog.Any("error", err))
	}
}

// DrainClose discards up to maxDrain bytes of rc and closes it so the
// underlying connection can be reused.
func DrainClose(ctx context.Context, rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, rc, maxDrain)
	Close(ctx, rc)
}

// Stream copies src into dst and returns the number of bytes written. Once
// response headers are sent a copy failure cannot be reported to the client, so
// it is only logged with the partial size.
func Stream(ctx context.Context, dst io.Writer, src io.Reader) int64 {
	n, err := io.Copy(dst, src)
	if err != nil {
		logging.From(ctx).Warn("stream interrupted",
			slog.Int64("written", n),
			slog.Any("error", err),
		)
	}
	return n
}
