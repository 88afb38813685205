package export

import (
	"fmt"

	"github.com/arthur-debert/nanoexport/formats"
	"github.com/arthur-debert/nanoexport/internal/validation"
)

// Validate checks a request before any side effect. The destination is
// checked first, then the archive-mode flag, the export type and finally,
// for types that write, every entry and archive name.
func Validate(fsys FileSystem, req *Request, policy validation.NamePolicy) (*formats.ExportType, error) {
	info, err := fsys.Stat(req.Path)
	if err != nil {
		return nil, newError(KindFileSystem, req.Path, err)
	}
	if !info.IsDir() {
		return nil, newError(KindFileSystem, req.Path, fmt.Errorf("not a directory"))
	}

	if req.IsZip == nil {
		return nil, newError(KindMissingRequiredOption, "is_zip", nil)
	}

	exportType, err := formats.Get(req.ExportType)
	if err != nil {
		return nil, newError(KindUnsupportedExportType, req.ExportType, err)
	}

	if !exportType.Writes {
		return exportType, nil
	}

	if *req.IsZip {
		if err := validation.CheckName(req.archiveName(), policy); err != nil {
			return nil, newError(KindInvalidEntryName, req.archiveName(), err)
		}
	}
	for _, name := range sortedNames(req.Data) {
		if err := validation.CheckName(name, policy); err != nil {
			return nil, newError(KindInvalidEntryName, name, err)
		}
	}

	return exportType, nil
}
