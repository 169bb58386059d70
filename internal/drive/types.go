package drive

import (
	"time"

	gdrive "google.golang.org/api/drive/v3"
)

// FolderMimeType is the MIME type Drive assigns to folders
const FolderMimeType = "application/vnd.google-apps.folder"

// File represents a selectable Drive file
type File struct {
	ID            string     `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	MimeType      string     `json:"mimeType" yaml:"mimeType"`
	Size          *int64     `json:"size,omitempty" yaml:"size,omitempty"`
	ThumbnailLink string     `json:"thumbnailLink,omitempty" yaml:"thumbnailLink,omitempty"`
	ModifiedTime  *time.Time `json:"modifiedTime,omitempty" yaml:"modifiedTime,omitempty"`
	IconLink      string     `json:"iconLink,omitempty" yaml:"iconLink,omitempty"`
}

// Folder represents a Drive folder
type Folder struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// ResultPage is one listing or search response
type ResultPage struct {
	Files         []File
	Folders       []Folder
	NextPageToken string
	// HasFolders is false for search results, which never carry folders
	HasFolders bool
}

// MapFile converts an API file into a File, defaulting every optional field
func MapFile(f *gdrive.File) File {
	if f == nil {
		return File{}
	}

	file := File{
		ID:            f.Id,
		Name:          f.Name,
		MimeType:      f.MimeType,
		ThumbnailLink: f.ThumbnailLink,
		IconLink:      f.IconLink,
	}

	// Drive omits size for native documents; zero is treated the same way
	if f.Size > 0 {
		size := f.Size
		file.Size = &size
	}

	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			file.ModifiedTime = &t
		}
	}

	return file
}

// MapFolder converts an API file into a Folder
func MapFolder(f *gdrive.File) Folder {
	if f == nil {
		return Folder{}
	}
	return Folder{ID: f.Id, Name: f.Name}
}

// MapFiles maps a slice of API files
func MapFiles(files []*gdrive.File) []File {
	out := make([]File, 0, len(files))
	for _, f := range files {
		out = append(out, MapFile(f))
	}
	return out
}

// MapFolders maps a slice of API files into folders
func MapFolders(files []*gdrive.File) []Folder {
	out := make([]Folder, 0, len(files))
	for _, f := range files {
		out = append(out, MapFolder(f))
	}
	return out
}

// SizeOrZero returns the file size, or 0 when unknown
func (f File) SizeOrZero() int64 {
	if f.Size == nil {
		return 0
	}
	return *f.Size
}
