//go:build linux

package dirwalk

import (
	"os"

	"golang.org/x/sys/unix"
)

// metadataFromFileInfo extracts size, atime/ctime/mtime and mode via a raw
// stat(2) call, the Go analogue of the Rust original's
// std::os::unix::fs::MetadataExt usage. The original reads atime/ctime/mtime
// as whole POSIX seconds; this implementation standardizes on milliseconds
// per the wire format's declared unit (see §9, Open Question d).
func metadataFromFileInfo(info os.FileInfo, absolutePath string) (Metadata, error) {
	var stat unix.Stat_t
	if err := unix.Stat(absolutePath, &stat); err != nil {
		return Metadata{}, err
	}

	return Metadata{
		Size:  info.Size(),
		Mode:  stat.Mode,
		Atime: timespecToMillis(stat.Atim),
		Ctime: timespecToMillis(stat.Ctim),
		Mtime: timespecToMillis(stat.Mtim),
	}, nil
}

func timespecToMillis(ts unix.Timespec) int64 {
	return ts.Sec*1000 + ts.Nsec/1_000_000
}
