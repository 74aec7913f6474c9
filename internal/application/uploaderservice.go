package application

import "github.com/ericfisherdev/dropvault/internal/domain/model"

// DefaultChunkSize keeps each PATCH request below Cloudflare's 100 MB body
// limit with a wide margin.
const DefaultChunkSize int64 = 5 * 1024 * 1024

// UploaderOptions are the fixed parts of the widget configuration.
type UploaderOptions struct {
	Target    string
	Theme     string
	Height    int
	Endpoint  string
	ChunkSize int64
}

// DefaultUploaderOptions returns the dashboard and transport settings the page
// ships with.
func DefaultUploaderOptions() UploaderOptions {
	return UploaderOptions{
		Target:    "#uploader",
		Theme:     "dark",
		Height:    400,
		Endpoint:  "/files/",
		ChunkSize: DefaultChunkSize,
	}
}

// UploaderService builds upload widget configurations.
type UploaderService struct {
	opts UploaderOptions
}

// NewUploaderService creates an UploaderService. Zero-valued options fall back
// to DefaultUploaderOptions.
func NewUploaderService(opts UploaderOptions) *UploaderService {
	def := DefaultUploaderOptions()
	if opts.Target == "" {
		opts.Target = def.Target
	}
	if opts.Theme == "" {
		opts.Theme = def.Theme
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Endpoint == "" {
		opts.Endpoint = def.Endpoint
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	return &UploaderService{opts: opts}
}

// Options returns the effective options.
func (s *UploaderService) Options() UploaderOptions {
	return s.opts
}

// Build returns the widget configuration with credential attached verbatim as
// the auth header. An empty credential yields an empty header value.
func (s *UploaderService) Build(credential string) model.UploaderConfig {
	return model.UploaderConfig{
		Dashboard: model.DashboardOptions{
			Inline: true,
			Target: s.opts.Target,
			Theme:  s.opts.Theme,
			Height: s.opts.Height,
		},
		Tus: model.TusOptions{
			Endpoint:  s.opts.Endpoint,
			ChunkSize: s.opts.ChunkSize,
			Headers: map[string]string{
				model.AuthHeader: credential,
			},
		},
	}
}
