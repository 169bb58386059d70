package drive

import (
	"fmt"
	"strings"
)

const (
	// FilePageSize is the number of files requested per page
	FilePageSize = 50
	// FolderPageSize is the number of folders requested per page
	FolderPageSize = 100

	fileFields   = "nextPageToken, files(id, name, mimeType, size, thumbnailLink, modifiedTime, iconLink)"
	folderFields = "nextPageToken, files(id, name)"

	fileOrder   = "modifiedTime desc"
	folderOrder = "name"

	rootFolderID = "root"
)

// DefaultMimeTypes is the allow-list used when none is configured
var DefaultMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"video/mp4",
	"video/quicktime",
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// EscapeQuery escapes a value for use inside a single-quoted query string
func EscapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

// MimeTypeFilter builds a disjunction of mimeType clauses
func MimeTypeFilter(mimeTypes []string) string {
	clauses := make([]string, 0, len(mimeTypes))
	for _, m := range mimeTypes {
		clauses = append(clauses, fmt.Sprintf("mimeType='%s'", EscapeQuery(m)))
	}
	return strings.Join(clauses, " or ")
}

// ParentFilter restricts a query to direct children of folderID, or of the
// root folder when folderID is empty
func ParentFilter(folderID string) string {
	if folderID == "" {
		folderID = rootFolderID
	}
	return fmt.Sprintf("'%s' in parents", EscapeQuery(folderID))
}

// FilesQuery matches allowed files directly under folderID
func FilesQuery(mimeTypes []string, folderID string) string {
	return fmt.Sprintf("(%s) and %s and trashed=false", MimeTypeFilter(mimeTypes), ParentFilter(folderID))
}

// FoldersQuery matches sub-folders directly under folderID
func FoldersQuery(folderID string) string {
	return fmt.Sprintf("mimeType='%s' and %s and trashed=false", FolderMimeType, ParentFilter(folderID))
}

// SearchQuery matches allowed files anywhere whose name contains query
func SearchQuery(mimeTypes []string, query string) string {
	return fmt.Sprintf("name contains '%s' and (%s) and trashed=false", EscapeQuery(query), MimeTypeFilter(mimeTypes))
}

// ViewLink returns the Drive web URL of a file
func ViewLink(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID)
}
