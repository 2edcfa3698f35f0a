package mojang

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/heartmarshall/mclang/internal/domain"
)

// ClientLangMember is where the source locale ships inside the client jar.
const ClientLangMember = "assets/minecraft/lang/" + string(domain.SourceLocale) + ".json"

// ExtractFile copies the archive member named member to dest. A missing
// member yields domain.ErrMissingSource.
func ExtractFile(archive, member, dest string) (int64, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return 0, fmt.Errorf("open archive %s: %w", archive, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", member, err)
		}
		defer rc.Close()

		n, err := writeFileAtomic(dest, func(w io.Writer) (int64, error) {
			return io.Copy(w, rc)
		})
		if err != nil {
			return n, fmt.Errorf("extract %s: %w", member, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%s not in %s: %w", member, archive, domain.ErrMissingSource)
}
