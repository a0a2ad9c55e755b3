package assets

import "errors"

// AssetResolver looks assets up in layers: a site's own asset directory,
// when configured, then the embedded defaults. Only a missing asset moves
// the lookup to the next layer.
type AssetResolver struct {
	custom *FilesystemLoader
	layers []AssetLoader
}

// NewAssetResolver returns a resolver over customBasePath and the embedded
// assets. An empty customBasePath leaves only the embedded layer.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if customBasePath != "" {
		custom, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = custom
		r.layers = append(r.layers, custom)
	}
	r.layers = append(r.layers, NewEmbeddedLoader())
	return r, nil
}

// LoadStyle returns the first stylesheet named name.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

// LoadTemplate returns the first fragment template named name.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, layer := range r.layers {
		var content string
		content, err = load(layer)
		if err == nil {
			return content, nil
		}
		// A bad name or unreadable file is reported, not hidden by a default.
		if !isNotFoundError(err) {
			return "", err
		}
	}
	return "", err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// HasCustomLoader reports whether a site asset directory is layered over
// the embedded assets.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// CustomPath returns the resolved site asset directory, or "" when only the
// embedded assets are used.
func (r *AssetResolver) CustomPath() string {
	if r.custom == nil {
		return ""
	}
	return r.custom.BasePath()
}

var _ AssetLoader = (*AssetResolver)(nil)
