package mojang

import (
	"fmt"

	"github.com/heartmarshall/mclang/internal/domain"
)

// Release channels of the version manifest.
const (
	ChannelRelease  = "release"
	ChannelSnapshot = "snapshot"
)

// ErrVersionNotFound is returned when the manifest does not list a version.
var ErrVersionNotFound = fmt.Errorf("version %w", domain.ErrNotFound)

// Manifest is the version manifest (version_manifest_v2.json).
type Manifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []VersionRef `json:"versions"`
}

// VersionRef points at the client manifest of one version.
type VersionRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
}

// Find returns the entry for version id.
func (m *Manifest) Find(id string) (VersionRef, error) {
	for _, v := range m.Versions {
		if v.ID == id {
			return v, nil
		}
	}
	return VersionRef{}, fmt.Errorf("%s: %w", id, ErrVersionNotFound)
}

// LatestRef returns the newest version on channel ("release" or "snapshot").
func (m *Manifest) LatestRef(channel string) (VersionRef, error) {
	var id string
	switch channel {
	case ChannelRelease:
		id = m.Latest.Release
	case "", ChannelSnapshot:
		id = m.Latest.Snapshot
	default:
		return VersionRef{}, fmt.Errorf("unknown channel %q: %w", channel, domain.ErrValidation)
	}
	if id == "" {
		return VersionRef{}, fmt.Errorf("no latest %s: %w", channel, ErrVersionNotFound)
	}
	return m.Find(id)
}

// Artifact is a downloadable file with its expected hash.
type Artifact struct {
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}

// VersionDetails is the client manifest of one version.
type VersionDetails struct {
	ID         string `json:"id"`
	AssetIndex struct {
		ID string `json:"id"`
		Artifact
	} `json:"assetIndex"`
	Downloads struct {
		Client Artifact `json:"client"`
	} `json:"downloads"`
}

// AssetObject is one entry of an asset index. Hash is the SHA-1 of the
// content and also its storage name.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// AssetIndex maps logical asset paths to stored objects.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// LangPath returns the asset index path of a locale's language file.
func LangPath(locale domain.Locale) string {
	return "minecraft/lang/" + locale.FileName()
}

// Lang looks up the language file of locale.
func (a *AssetIndex) Lang(locale domain.Locale) (AssetObject, bool) {
	obj, ok := a.Objects[LangPath(locale)]
	return obj, ok
}
