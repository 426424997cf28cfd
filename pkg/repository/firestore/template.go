package firestore

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TemplatesCollection is the collection name without prefix
const TemplatesCollection = "templates"

type templateDocument struct {
	ID        int64     `firestore:"id"`
	Name      string    `firestore:"name"`
	URL       string    `firestore:"url"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type templateRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTemplateRepository(client *firestore.Client) *templateRepository {
	return &templateRepository{
		client:           client,
		collectionPrefix: "",
	}
}

// TemplatesCollectionName returns the templates collection name under prefix
func TemplatesCollectionName(prefix string) string {
	if prefix != "" {
		return prefix + "_" + TemplatesCollection
	}
	return TemplatesCollection
}

func (r *templateRepository) templatesCollection() string {
	return TemplatesCollectionName(r.collectionPrefix)
}

func (r *templateRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *templateRepository) docRef(id int64) *firestore.DocumentRef {
	return r.client.Collection(r.templatesCollection()).Doc(strconv.FormatInt(id, 10))
}

func templateToDocument(t *model.Template) *templateDocument {
	return &templateDocument{
		ID:        t.ID,
		Name:      t.Name,
		URL:       t.URL,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func templateToModel(doc *templateDocument) *model.Template {
	return &model.Template{
		ID:        doc.ID,
		Name:      doc.Name,
		URL:       doc.URL,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// getNextID allocates the next template ID from a counter document
func (r *templateRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc("template_counter")

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next template ID")
	}

	return nextID, nil
}

func (r *templateRepository) Create(ctx context.Context, t *model.Template) (*model.Template, error) {
	nextID, err := r.getNextID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := templateToDocument(t)
	doc.ID = nextID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.docRef(doc.ID).Create(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create template", goerr.V(model.TemplateIDKey, doc.ID))
	}

	return templateToModel(doc), nil
}

func (r *templateRepository) Get(ctx context.Context, id int64) (*model.Template, error) {
	snap, err := r.docRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "template not found", goerr.V(model.TemplateIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get template", goerr.V(model.TemplateIDKey, id))
	}

	var doc templateDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode template", goerr.V(model.TemplateIDKey, id))
	}

	return templateToModel(&doc), nil
}

func (r *templateRepository) List(ctx context.Context, order model.TemplateOrder) ([]*model.Template, error) {
	query := r.client.Collection(r.templatesCollection()).Query
	if order == model.TemplateOrderName {
		// name, id requires the composite index created by `migrate`
		query = query.OrderBy("name", firestore.Asc).OrderBy("id", firestore.Asc)
	} else {
		query = query.OrderBy("id", firestore.Asc)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var templates []*model.Template
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate templates")
		}

		var doc templateDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode template", goerr.V("doc_id", snap.Ref.ID))
		}

		templates = append(templates, templateToModel(&doc))
	}

	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, t *model.Template) (*model.Template, error) {
	ref := r.docRef(t.ID)

	var updated *templateDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "template not found", goerr.V(model.TemplateIDKey, t.ID))
			}
			return goerr.Wrap(err, "failed to get template", goerr.V(model.TemplateIDKey, t.ID))
		}

		var existing templateDocument
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode template", goerr.V(model.TemplateIDKey, t.ID))
		}

		updated = templateToDocument(t)
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(ref, updated)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update template", goerr.V(model.TemplateIDKey, t.ID))
	}

	return templateToModel(updated), nil
}

func (r *templateRepository) Delete(ctx context.Context, id int64) error {
	ref := r.docRef(id)

	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "template not found", goerr.V(model.TemplateIDKey, id))
		}
		return goerr.Wrap(err, "failed to check template existence", goerr.V(model.TemplateIDKey, id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete template", goerr.V(model.TemplateIDKey, id))
	}

	return nil
}
