// Package assets provides the stylesheets and page templates used to build
// project fragment documents.
//
// Three loaders implement AssetLoader:
//
//	EmbeddedLoader    built-in assets compiled into the binary
//	FilesystemLoader  assets from a directory on disk
//	AssetResolver     custom directory first, embedded as fallback
//
// A custom directory mirrors the embedded layout:
//
//	{basePath}/
//	├── styles/{name}.css
//	└── templates/{name}.html
//
// Asset names are validated before use. FilesystemLoader resolves symlinks
// and refuses paths that leave basePath.
package assets
