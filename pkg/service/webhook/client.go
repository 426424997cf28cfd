package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/iract/pkg/domain/interfaces"
	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/domain/types"
	"github.com/secmon-lab/iract/pkg/utils/logging"
	"github.com/secmon-lab/iract/pkg/utils/safe"
)

// Client talks to the dataset query and generation webhooks
type Client struct {
	datasetEndpoint       string
	createEndpoint        string
	emptyImagePlaceholder string
	httpClient            *http.Client
}

var (
	_ interfaces.DatasetClient    = &Client{}
	_ interfaces.GenerationClient = &Client{}
)

// New creates a webhook client. Both endpoints are required.
func New(datasetEndpoint, createEndpoint string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(datasetEndpoint); err != nil {
		return nil, goerr.Wrap(err, "invalid dataset query endpoint", goerr.V(model.EndpointKey, datasetEndpoint))
	}
	if _, err := url.ParseRequestURI(createEndpoint); err != nil {
		return nil, goerr.Wrap(err, "invalid create endpoint", goerr.V(model.EndpointKey, createEndpoint))
	}

	c := &Client{
		datasetEndpoint:       datasetEndpoint,
		createEndpoint:        createEndpoint,
		emptyImagePlaceholder: DefaultEmptyImagePlaceholder,
		httpClient:            cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// rawDataset distinguishes a missing or null "dataset" from an empty object
type rawDataset struct {
	present bool
	schema  model.FieldSchema
	err     error
}

func (d *rawDataset) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	d.present = true
	d.err = json.Unmarshal(data, &d.schema)
	return nil
}

// FetchDataset requests the field schema of the template at templateURL
func (c *Client) FetchDataset(ctx context.Context, templateURL string) (model.FieldSchema, error) {
	if strings.TrimSpace(templateURL) == "" {
		return nil, goerr.Wrap(model.ErrValidation, "template URL is empty",
			goerr.V(model.DetailKey, "Please select a template first"))
	}

	endpoint, err := url.Parse(c.datasetEndpoint)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSchemaFetch, "invalid dataset query endpoint",
			goerr.V(model.EndpointKey, c.datasetEndpoint),
			goerr.V(model.DetailKey, err.Error()))
	}
	q := endpoint.Query()
	q.Add(BrandURLField, templateURL)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSchemaFetch, "failed to build dataset request",
			goerr.V(model.DetailKey, err.Error()))
	}
	req.Header.Set("Accept", "application/json")

	logging.From(ctx).Debug("fetching dataset", "brand_url", templateURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSchemaFetch, "dataset request failed",
			goerr.V(model.EndpointKey, c.datasetEndpoint),
			goerr.V("cause", err.Error()),
			goerr.V(model.DetailKey, err.Error()))
	}
	defer safe.DrainClose(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.Wrap(model.ErrSchemaFetch, "dataset endpoint returned error status",
			goerr.V(model.StatusKey, resp.StatusCode),
			goerr.V(model.DetailKey, fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)))
	}

	var body datasetResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, goerr.Wrap(model.ErrSchemaFormat, "failed to decode dataset response",
			goerr.V("cause", err.Error()),
			goerr.V(model.DetailKey, "Invalid response format - body is not JSON"))
	}
	if !body.Dataset.present {
		return nil, goerr.Wrap(model.ErrSchemaFormat, "dataset property is missing",
			goerr.V(model.DetailKey, "Invalid response format - missing dataset property"))
	}
	if body.Dataset.err != nil {
		return nil, goerr.Wrap(model.ErrSchemaFormat, "dataset property is malformed",
			goerr.V("cause", body.Dataset.err.Error()),
			goerr.V(model.DetailKey, "Invalid response format - missing dataset property"))
	}

	schema := body.Dataset.schema
	if schema == nil {
		schema = model.FieldSchema{}
	}
	return schema, nil
}

// Submit posts the form as multipart to the generation webhook. It is a single
// attempt; any transport, status or decoding failure is an ErrSubmission.
func (c *Client) Submit(ctx context.Context, brandURL string, form model.FormValue, schema model.FieldSchema) (*model.SubmissionResult, error) {
	payload, contentType, err := BuildPayload(brandURL, form, schema, c.emptyImagePlaceholder)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSubmission, "failed to build payload",
			goerr.V("cause", err.Error()),
			goerr.V(model.DetailKey, "could not encode the form"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.createEndpoint, payload)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSubmission, "failed to build create request",
			goerr.V(model.DetailKey, err.Error()))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	logging.From(ctx).Info("submitting form", "brand_url", brandURL, "fields", len(schema))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.ErrSubmission, "create request failed",
			goerr.V(model.EndpointKey, c.createEndpoint),
			goerr.V("cause", err.Error()),
			goerr.V(model.DetailKey, err.Error()))
	}
	defer safe.DrainClose(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.Wrap(model.ErrSubmission, "create endpoint returned error status",
			goerr.V(model.StatusKey, resp.StatusCode),
			goerr.V(model.DetailKey, fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)))
	}

	var result model.SubmissionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(model.ErrSubmission, "failed to decode create response",
			goerr.V("cause", err.Error()),
			goerr.V(model.DetailKey, "the generator returned an unreadable response"))
	}
	if result.ProductURL == "" {
		return nil, goerr.Wrap(model.ErrSubmission, "create response has no productUrl",
			goerr.V(model.DetailKey, "the generator did not return an image"))
	}

	return &result, nil
}

// BuildPayload encodes the multipart body of a submission. Fields are written
// in schema order after brandUrl:
//   - text: the current value, "" when unset
//   - image with a file: the file bytes under the original file name
//   - image without a file: the placeholder value
//
// Fields of unknown kind are skipped.
func BuildPayload(brandURL string, form model.FormValue, schema model.FieldSchema, placeholder string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField(BrandURLField, brandURL); err != nil {
		return nil, "", goerr.Wrap(err, "failed to write brandUrl")
	}

	for _, field := range schema {
		value := form[field.Name]

		switch field.Kind {
		case types.FieldKindText:
			if err := mw.WriteField(field.Name, value.Text); err != nil {
				return nil, "", goerr.Wrap(err, "failed to write text field", goerr.V(model.FieldNameKey, field.Name))
			}

		case types.FieldKindImage:
			if value.File == nil {
				if err := mw.WriteField(field.Name, placeholder); err != nil {
					return nil, "", goerr.Wrap(err, "failed to write image placeholder", goerr.V(model.FieldNameKey, field.Name))
				}
				continue
			}
			if err := writeFilePart(mw, field.Name, value.File); err != nil {
				return nil, "", err
			}

		default:
			continue
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", goerr.Wrap(err, "failed to close multipart writer")
	}

	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(mw *multipart.Writer, name string, file *model.FileHandle) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fileName := file.Name
	if fileName == "" {
		fileName = name
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(fileName)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return goerr.Wrap(err, "failed to create file part", goerr.V(model.FieldNameKey, name))
	}
	if _, err := part.Write(file.Data); err != nil {
		return goerr.Wrap(err, "failed to write file part", goerr.V(model.FieldNameKey, name))
	}
	return nil
}

// Download fetches the generated artifact. The caller owns the returned body.
func (c *Client) Download(ctx context.Context, productURL string) (*interfaces.Artifact, error) {
	if strings.TrimSpace(productURL) == "" {
		return nil, goerr.Wrap(model.ErrValidation, "no result to download",
			goerr.V(model.DetailKey, "There is no generated image to download"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return nil, goerr.Wrap(model.ErrDownload, "failed to build download request",
			goerr.V("url", productURL),
			goerr.V(model.DetailKey, err.Error()))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.ErrDownload, "download request failed",
			goerr.V("url", productURL),
			goerr.V(model.DetailKey, err.Error()))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		safe.DrainClose(ctx, resp.Body)
		return nil, goerr.Wrap(model.ErrDownload, "download returned error status",
			goerr.V("url", productURL),
			goerr.V(model.StatusKey, resp.StatusCode),
			goerr.V(model.DetailKey, fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)))
	}

	return &interfaces.Artifact{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}
