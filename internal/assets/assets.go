package assets

// Built-in asset names.
const (
	DefaultStyleName    = "fragment"
	DefaultTemplateName = "fragment"
)

var defaultLoader = NewEmbeddedLoader()

// Styles lists the built-in stylesheet names.
func Styles() []string {
	return defaultLoader.Styles()
}
