package webhook

import (
	"net/http"
)

// DefaultEmptyImagePlaceholder is sent for image fields left empty. The
// generation webhook treats it as "no file provided".
const DefaultEmptyImagePlaceholder = "data"

// BrandURLField is the multipart and query parameter carrying the template URL
const BrandURLField = "brandUrl"

type datasetResponse struct {
	Dataset rawDataset `json:"dataset"`
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for every call
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithEmptyImagePlaceholder overrides the value sent for empty image fields
func WithEmptyImagePlaceholder(v string) Option {
	return func(c *Client) {
		c.emptyImagePlaceholder = v
	}
}
