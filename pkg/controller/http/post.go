package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/controller/http/view"
	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/domain/types"
	"github.com/secmon-lab/iract/pkg/usecase"
	"github.com/secmon-lab/iract/pkg/utils/errutil"
	"github.com/secmon-lab/iract/pkg/utils/logging"
	"github.com/secmon-lab/iract/pkg/utils/safe"
)

// handleActionError logs a failed user action. Validation failures are the
// user's to fix and are not reported as errors.
func handleActionError(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}
	if errors.Is(err, model.ErrValidation) {
		logging.From(ctx).Warn(msg, "detail", model.Detail(err))
		return
	}
	_ = errutil.Handle(ctx, err, msg)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	if err := s.uc.Post.LoadTemplates(ctx, sess); err != nil {
		handleActionError(ctx, err, "failed to load templates")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Index(w, view.NewIndexData(sess.View())); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
	}
}

func (s *Server) selectHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	var id int64
	if raw := r.FormValue("template_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			sess.SetError(usecase.MsgSelectTemplate)
			handleActionError(ctx, goerr.Wrap(model.ErrValidation, "invalid template id", goerr.V(model.TemplateIDKey, raw)), "failed to select template")
			redirectHome(w, r)
			return
		}
		id = parsed
	}

	handleActionError(ctx, s.uc.Post.SelectTemplate(ctx, sess, id), "failed to select template")
	redirectHome(w, r)
}

func (s *Server) formHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	if err := s.applyForm(w, r, sess); err != nil {
		sess.SetError(model.Detail(err))
		handleActionError(ctx, err, "failed to update form")
	}
	redirectHome(w, r)
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	if err := s.applyForm(w, r, sess); err != nil {
		sess.SetError(model.Detail(err))
		handleActionError(ctx, err, "failed to update form")
		redirectHome(w, r)
		return
	}

	handleActionError(ctx, s.uc.Post.Submit(ctx, sess), "failed to submit form")
	redirectHome(w, r)
}

func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.uc.Post.Reset(ctx, sessionFrom(ctx))
	redirectHome(w, r)
}

func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	artifact, err := s.uc.Post.Download(ctx, sessionFrom(ctx))
	if err != nil {
		handleActionError(ctx, err, "failed to download result")
		redirectHome(w, r)
		return
	}
	defer safe.Close(ctx, artifact.Body)

	contentType := artifact.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": s.downloadFileName}))
	if artifact.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(artifact.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	n := safe.Stream(ctx, w, artifact.Body)
	logging.From(ctx).Info("result downloaded", "bytes", n)
}

// applyForm copies the posted field values into the session form. Text inputs
// that were not posted are left unchanged. An image is replaced when a file is
// posted and cleared when its clear box is checked.
func (s *Server) applyForm(w http.ResponseWriter, r *http.Request, sess *model.Session) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return goerr.Wrap(model.ErrValidation, "upload too large",
				goerr.V("limit", tooLarge.Limit),
				goerr.V(model.DetailKey, fmt.Sprintf("The upload exceeds the %.2f KB limit", float64(tooLarge.Limit)/1024)))
		}
		return goerr.Wrap(model.ErrValidation, "failed to parse form",
			goerr.V("cause", err.Error()),
			goerr.V(model.DetailKey, "The uploaded form could not be read"))
	}

	ctx := r.Context()
	snapshot := sess.View()
	for _, field := range snapshot.Schema {
		key := view.FieldInputPrefix + field.Name

		switch field.Kind {
		case types.FieldKindText:
			if values, ok := r.Form[key]; ok && len(values) > 0 {
				s.uc.Post.SetField(ctx, sess, field.Name, model.TextValue(values[0]))
			}

		case types.FieldKindImage:
			if r.MultipartForm != nil {
				if headers := r.MultipartForm.File[key]; len(headers) > 0 && headers[0].Size > 0 {
					file, err := readUpload(ctx, headers[0])
					if err != nil {
						return goerr.Wrap(err, "failed to read upload", goerr.V(model.FieldNameKey, field.Name))
					}
					s.uc.Post.SetField(ctx, sess, field.Name, model.ImageValue(file))
					continue
				}
			}
			if r.Form.Get(view.ClearInputPrefix+field.Name) != "" {
				s.uc.Post.SetField(ctx, sess, field.Name, model.ImageValue(nil))
			}
		}
	}
	return nil
}

func readUpload(ctx context.Context, header *multipart.FileHeader) (*model.FileHandle, error) {
	f, err := header.Open()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open upload")
	}
	defer safe.Close(ctx, f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read upload")
	}

	return &model.FileHandle{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
