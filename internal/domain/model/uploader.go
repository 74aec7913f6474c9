package model

// AuthHeader is the request header that carries the upload credential.
const AuthHeader = "X-Auth-Token"

// UploaderConfig is the construction-time configuration of the browser upload
// widget: one dashboard surface and one tus transport.
type UploaderConfig struct {
	Dashboard DashboardOptions `json:"dashboard"`
	Tus       TusOptions       `json:"tus"`
}

// DashboardOptions configures the inline dashboard surface.
type DashboardOptions struct {
	Inline bool   `json:"inline"`
	Target string `json:"target"`
	Theme  string `json:"theme"`
	Height int    `json:"height"`
}

// TusOptions configures the resumable-upload transport.
type TusOptions struct {
	Endpoint  string            `json:"endpoint"`
	ChunkSize int64             `json:"chunkSize"`
	Headers   map[string]string `json:"headers"`
}

// AuthToken returns the credential carried by the transport headers.
func (c UploaderConfig) AuthToken() string {
	return c.Tus.Headers[AuthHeader]
}
