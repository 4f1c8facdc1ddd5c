package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spherical/docqa/cmd/docqa/ui"
	"github.com/spherical/docqa/internal/domain"
)

// readUpload loads path as an upload, resolving its format from the
// extension. Files over maxBytes are rejected before they are read. An
// unknown extension is left for the registry to reject.
func readUpload(path string, maxBytes int64) (domain.RawUpload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.RawUpload{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.RawUpload{}, fmt.Errorf("%s is a directory", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return domain.RawUpload{}, domain.PayloadTooLargeError(info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RawUpload{}, fmt.Errorf("read %s: %w", path, err)
	}
	format, _ := domain.ResolveFormat("", path)
	return domain.RawUpload{
		Data:         data,
		Format:       format,
		Filename:     filepath.Base(path),
		DeclaredSize: info.Size(),
	}, nil
}

// reportFailure prints err with its kind and returns it for cobra.
func reportFailure(u *ui.UI, err error) error {
	de, ok := domain.AsDomainError(err)
	if !ok {
		u.Error("%v", err)
		return err
	}
	u.Error("%s: %s", de.Kind, de.Message)
	if de.Kind == domain.KindConverterUnavailable {
		u.Warning("install LibreOffice and make sure soffice is on PATH, or set SOFFICE_PATH")
	}
	return de
}
