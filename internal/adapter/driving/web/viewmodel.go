package web

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	vm "github.com/ericfisherdev/dropvault/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/dropvault/internal/application"
	"github.com/ericfisherdev/dropvault/internal/domain/model"
)

// toUploadPageViewModel converts an initialized session into the page view.
func toUploadPageViewModel(s *application.Session, opts PageOptions, csrf string) (vm.UploadPageViewModel, error) {
	uploaderJSON, err := json.Marshal(s.Uploader)
	if err != nil {
		return vm.UploadPageViewModel{}, fmt.Errorf("encode uploader config: %w", err)
	}

	maxSize := "any size"
	if opts.MaxSize > 0 {
		maxSize = humanize.IBytes(uint64(opts.MaxSize))
	}

	return vm.UploadPageViewModel{
		Title:            opts.Title,
		BannerHTML:       opts.BannerHTML,
		AuthEntryVisible: s.Token.EntryVisible,
		CSRFToken:        csrf,
		UploaderJSON:     string(uploaderJSON),
		UploaderTarget:   strings.TrimPrefix(s.Uploader.Dashboard.Target, "#"),
		MaxSize:          maxSize,
		ChunkSize:        humanize.IBytes(uint64(s.Uploader.Tus.ChunkSize)),
		ExpiryNote:       opts.ExpiryNote,
	}, nil
}

func toResultBlockViewModel(b model.ResultBlock) vm.ResultBlockViewModel {
	return vm.ResultBlockViewModel{
		Label:      b.Label,
		LinkLabel:  b.LinkLabel,
		URL:        b.URL,
		LinkText:   b.LinkText,
		Target:     b.Target,
		ExpiryNote: b.ExpiryNote,
	}
}
