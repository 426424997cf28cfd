package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/interfaces"
	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/utils/async"
	"github.com/secmon-lab/iract/pkg/utils/logging"
	"github.com/secmon-lab/iract/pkg/utils/safe"
)

// PostUseCase drives one browser session through template selection, form
// editing, submission and download.
type PostUseCase struct {
	repo      interfaces.Repository
	dataset   interfaces.DatasetClient
	generator interfaces.GenerationClient
	sessions  *SessionStore
	archive   interfaces.ArtifactArchive
}

func NewPostUseCase(repo interfaces.Repository, dataset interfaces.DatasetClient, generator interfaces.GenerationClient, sessions *SessionStore, archive interfaces.ArtifactArchive) *PostUseCase {
	return &PostUseCase{
		repo:      repo,
		dataset:   dataset,
		generator: generator,
		sessions:  sessions,
		archive:   archive,
	}
}

// Session returns the session stored under id, or a new one when id is
// unknown or expired
func (uc *PostUseCase) Session(id model.SessionID) *model.Session {
	if id != "" {
		if sess, ok := uc.sessions.Get(id); ok {
			return sess
		}
	}
	return uc.sessions.Create()
}

// LoadTemplates refreshes the template selector of the session, ordered by name
func (uc *PostUseCase) LoadTemplates(ctx context.Context, sess *model.Session) error {
	templates, err := uc.repo.Template().List(ctx, model.TemplateOrderName)
	if err != nil {
		err = storeError(err, "failed to load templates", 0)
		sess.SetError(MsgLoadPrefix + model.Detail(err))
		return err
	}
	sess.SetTemplates(templates)
	return nil
}

func (uc *PostUseCase) lookupTemplate(ctx context.Context, sess *model.Session, id int64) (*model.Template, error) {
	if t, ok := model.FindTemplate(sess.View().Templates, id); ok {
		return t, nil
	}
	t, err := uc.repo.Template().Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to get selected template", id)
	}
	return t, nil
}

// SelectTemplate switches the session to the template with id and fetches its
// schema. A failed fetch leaves the session in Error with the schema cleared.
// A fetch that completes after a newer selection or reset is discarded.
func (uc *PostUseCase) SelectTemplate(ctx context.Context, sess *model.Session, id int64) error {
	logger := logging.From(ctx).With(SessionIDKey, sess.ID())

	if id == 0 {
		sess.SetError(MsgSelectTemplate)
		return goerr.Wrap(model.ErrValidation, "no template selected",
			goerr.V(model.DetailKey, MsgSelectTemplate))
	}

	t, err := uc.lookupTemplate(ctx, sess, id)
	if err != nil {
		sess.SetError(MsgFetchPrefix + model.Detail(err))
		return err
	}

	gen := sess.BeginSelect(t)
	schema, err := uc.dataset.FetchDataset(ctx, t.URL)
	if err != nil {
		msg := MsgFetchPrefix + model.Detail(err)
		if errors.Is(err, model.ErrValidation) {
			msg = model.Detail(err)
		}
		if !sess.FailSchema(gen, msg) {
			logger.Debug("discarded stale schema failure", GenerationKey, gen, "error", err.Error())
			return nil
		}
		return goerr.Wrap(err, "failed to fetch dataset", goerr.V(model.TemplateIDKey, id))
	}

	if !sess.CompleteSchema(gen, schema) {
		logger.Debug("discarded stale schema", GenerationKey, gen, model.TemplateIDKey, id)
		return nil
	}

	logger.Info("schema loaded", model.TemplateIDKey, id, "fields", schema.Names())
	return nil
}

// SetField applies one form edit
func (uc *PostUseCase) SetField(ctx context.Context, sess *model.Session, name string, value model.FieldValue) {
	sess.SetField(name, value)
}

// Submit sends the current form to the generation webhook. On failure the
// form is kept so the user can retry.
func (uc *PostUseCase) Submit(ctx context.Context, sess *model.Session) error {
	logger := logging.From(ctx).With(SessionIDKey, sess.ID())

	req, ok := sess.BeginSubmit()
	if !ok {
		sess.SetError(MsgSelectTemplate)
		return goerr.Wrap(model.ErrValidation, "no schema loaded",
			goerr.V(model.DetailKey, MsgSelectTemplate))
	}

	result, err := uc.generator.Submit(ctx, req.BrandURL, req.Form, req.Schema)
	if err != nil {
		if !sess.FailSubmit(req.Generation, MsgSubmitPrefix+model.Detail(err)) {
			logger.Debug("discarded stale submission failure", GenerationKey, req.Generation, "error", err.Error())
			return nil
		}
		return goerr.Wrap(err, "failed to submit form", goerr.V(GenerationKey, req.Generation))
	}

	if !sess.CompleteSubmit(req.Generation, result) {
		logger.Debug("discarded stale submission result", GenerationKey, req.Generation)
		return nil
	}

	logger.Info("form submitted", "product_url", result.ProductURL)

	if uc.archive != nil {
		productURL := result.ProductURL
		async.Dispatch(ctx, "archive", func(ctx context.Context) error {
			return uc.archiveArtifact(ctx, productURL)
		})
	}
	return nil
}

func (uc *PostUseCase) archiveArtifact(ctx context.Context, productURL string) error {
	artifact, err := uc.generator.Download(ctx, productURL)
	if err != nil {
		return goerr.Wrap(err, "failed to download artifact for archive")
	}
	defer safe.Close(ctx, artifact.Body)

	if err := uc.archive.Archive(ctx, productURL, artifact); err != nil {
		return goerr.Wrap(err, "failed to archive artifact", goerr.V("product_url", productURL))
	}
	return nil
}

// Reset discards edits, the result and the error of the session
func (uc *PostUseCase) Reset(ctx context.Context, sess *model.Session) {
	sess.Reset()
}

// Download opens the current result. The caller must close the artifact body.
func (uc *PostUseCase) Download(ctx context.Context, sess *model.Session) (*interfaces.Artifact, error) {
	productURL := sess.ProductURL()
	if productURL == "" {
		sess.SetError(MsgNoResult)
		return nil, goerr.Wrap(model.ErrValidation, "no result to download",
			goerr.V(model.DetailKey, MsgNoResult))
	}

	artifact, err := uc.generator.Download(ctx, productURL)
	if err != nil {
		sess.SetError(MsgDownloadPrefix + model.Detail(err))
		return nil, goerr.Wrap(err, "failed to download result")
	}
	return artifact, nil
}
