package models

// FileUpload is the single file part retained from a multipart request
type FileUpload struct {
	Name        string // client-supplied file name
	ContentType string
	Data        []byte
}

// Size returns the number of bytes in the upload
func (f *FileUpload) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}
