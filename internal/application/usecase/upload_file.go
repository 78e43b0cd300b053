package usecase

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/internal/domain/repository"
)

type UploadFileInput struct {
	UserID      string
	Folder      string
	FileName    string
	ContentType string
	Body        io.Reader
}

type UploadFileOutput struct {
	Path string
	URL  string
}

// UploadFile stores a photo under "<userID>/<folder>/<unixmillis><ext>".
type UploadFile struct {
	storage repository.FileStorage
	now     func() time.Time
}

func NewUploadFile(storage repository.FileStorage) *UploadFile {
	return &UploadFile{storage: storage, now: time.Now}
}

func (uc *UploadFile) Execute(ctx context.Context, in UploadFileInput) (UploadFileOutput, error) {
	const op = "usecase.UploadFile"
	if in.UserID == "" {
		return UploadFileOutput{}, errs.New(errs.Unauthenticated, op, "user id is required")
	}
	if in.Body == nil {
		return UploadFileOutput{}, errs.New(errs.Internal, op, "file body is required")
	}
	folder := strings.Trim(in.Folder, "/")
	if folder == "" {
		folder = "uploads"
	}
	ext := strings.ToLower(filepath.Ext(in.FileName))
	if ext == "" {
		ext = ".jpg"
	}
	ct := in.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	p := path.Join(in.UserID, folder, strconv.FormatInt(uc.now().UnixMilli(), 10)+ext)

	url, err := uc.storage.Upload(ctx, p, ct, in.Body)
	if err != nil {
		return UploadFileOutput{}, err
	}
	if url == "" {
		url = uc.storage.PublicURL(p)
	}
	return UploadFileOutput{Path: p, URL: url}, nil
}
