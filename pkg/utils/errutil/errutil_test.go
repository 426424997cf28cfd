package errutil_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/iract/pkg/utils/errutil"
	"github.com/secmon-lab/iract/pkg/utils/logging"
)

func newLoggedContext(buf *bytes.Buffer) context.Context {
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	return logging.With(context.Background(), logger)
}

func TestHandle(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(context.Background(), nil, "nothing"))
	})

	t.Run("goerr values are logged", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newLoggedContext(&buf)
		err := goerr.New("boom", goerr.V("template_id", 42))

		got := errutil.Handle(ctx, err, "failed to do it")
		gt.Value(t, got).Equal(err)
		gt.String(t, buf.String()).Contains("failed to do it")
		gt.String(t, buf.String()).Contains("template_id")
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newLoggedContext(&buf)
		err := errors.New("plain")

		gt.Value(t, errutil.Handle(ctx, err, "plain failure")).Equal(err)
		gt.String(t, buf.String()).Contains("plain failure")
	})
}

func TestHandleHTTP(t *testing.T) {
	var buf bytes.Buffer
	ctx := newLoggedContext(&buf)
	w := httptest.NewRecorder()

	errutil.HandleHTTP(ctx, w, goerr.New("bad input"), http.StatusBadRequest)

	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	gt.String(t, w.Body.String()).Contains("bad input")
	gt.String(t, buf.String()).Contains("HTTP error")
}
