package attachment

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

// maxFileSize caps staged attachments. The payload travels inline as base64,
// so anything bigger than a few megabytes is a mistake.
const maxFileSize = 8 << 20

// Read loads the named file into an inline attachment: base64 payload, MIME
// type from the extension (content sniffing as fallback), and an image flag.
func Read(path string) (*domain.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("inspecting file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}

	return &domain.Attachment{
		FileName: filepath.Base(path),
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
		IsImage:  strings.HasPrefix(mimeType, "image/"),
	}, nil
}
