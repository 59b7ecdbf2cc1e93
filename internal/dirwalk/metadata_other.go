//go:build !linux

package dirwalk

import "os"

// metadataFromFileInfo falls back to portable os.FileInfo fields on every
// platform other than Linux; os.FileInfo carries no atime/ctime, so all
// three timestamps collapse to mtime.
func metadataFromFileInfo(info os.FileInfo, absolutePath string) (Metadata, error) {
	mtime := info.ModTime().UnixMilli()
	return Metadata{
		Size:  info.Size(),
		Mode:  uint32(info.Mode()),
		Atime: mtime,
		Ctime: mtime,
		Mtime: mtime,
	}, nil
}
