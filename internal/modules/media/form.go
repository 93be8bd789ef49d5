package media

import (
	"fmt"
	"io"
	"mime/multipart"
)

// FilesFromForm reads the named multipart field into File values, preserving
// form order. Order matters downstream because the first URL of an upload
// batch becomes the entity cover.
func FilesFromForm(form *multipart.Form, field string) ([]File, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	files := make([]File, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, fmt.Errorf("media: open upload %q: %w", h.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("media: read upload %q: %w", h.Filename, err)
		}
		files = append(files, File{
			Name:        h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}
