package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/controller/http/view"
	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/usecase"
	"github.com/secmon-lab/iract/pkg/utils/errutil"
)

type templateResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the text shown for a failed template operation
func userMessage(err error) string {
	if errors.Is(err, model.ErrValidation) {
		return model.Detail(err)
	}
	return usecase.MsgStorePrefix + model.Detail(err)
}

func (s *Server) renderTemplates(w http.ResponseWriter, r *http.Request, status int, data view.TemplatesData) {
	ctx := r.Context()

	if data.Templates == nil {
		templates, err := s.uc.Template.List(ctx, model.TemplateOrderID)
		if err != nil {
			handleActionError(ctx, err, "failed to list templates")
			status = http.StatusInternalServerError
			if data.Error == "" {
				data.Error = usecase.MsgLoadPrefix + model.Detail(err)
			}
		}
		data.Templates = templates
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.renderer.Templates(w, data); err != nil {
		_ = errutil.Handle(ctx, err, "failed to render templates page")
	}
}

func (s *Server) listTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	s.renderTemplates(w, r, http.StatusOK, view.TemplatesData{})
}

func (s *Server) createTemplateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, url := r.FormValue("name"), r.FormValue("url")

	if _, err := s.uc.Template.Create(ctx, name, url); err != nil {
		handleActionError(ctx, err, "failed to create template")
		s.renderTemplates(w, r, statusOf(err), view.TemplatesData{
			Error:     userMessage(err),
			DraftName: name,
			DraftURL:  url,
		})
		return
	}

	http.Redirect(w, r, "/templates", http.StatusSeeOther)
}

func parseTemplateID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(model.ErrValidation, "invalid template id",
			goerr.V(model.TemplateIDKey, raw),
			goerr.V(model.DetailKey, "Template not found"))
	}
	return id, nil
}

func (s *Server) updateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseTemplateID(r)
	if err == nil {
		_, err = s.uc.Template.Update(ctx, id, r.FormValue("name"), r.FormValue("url"))
	}
	if err != nil {
		handleActionError(ctx, err, "failed to update template")
		s.renderTemplates(w, r, statusOf(err), view.TemplatesData{Error: userMessage(err)})
		return
	}

	http.Redirect(w, r, "/templates", http.StatusSeeOther)
}

func (s *Server) deleteTemplateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseTemplateID(r)
	if err == nil {
		err = s.uc.Template.Delete(ctx, id)
	}
	if err != nil {
		handleActionError(ctx, err, "failed to delete template")
		s.renderTemplates(w, r, statusOf(err), view.TemplatesData{Error: userMessage(err)})
		return
	}

	http.Redirect(w, r, "/templates", http.StatusSeeOther)
}

func (s *Server) apiTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order := model.ParseTemplateOrder(r.URL.Query().Get("order"))

	templates, err := s.uc.Template.List(ctx, order)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	resp := make([]templateResponse, len(templates))
	for i, t := range templates {
		resp[i] = templateResponse{
			ID:        t.ID,
			Name:      t.Name,
			URL:       t.URL,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}
