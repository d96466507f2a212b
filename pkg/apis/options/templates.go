package options

import "github.com/spf13/pflag"

// Templates includes options for configuring the landing and error pages
// appearance.
type Templates struct {
	// Path is the path to a folder containing a landing.html and an error.html
	// template.
	// These files will be used instead of the default templates if present.
	// If either file is missing, the default will be used instead.
	Path string `flag:"custom-templates-dir" cfg:"custom_templates_dir"`

	// Footer overrides the default page footer text.
	Footer string `flag:"footer" cfg:"footer"`

	// Debug renders the underlying error on error pages.
	Debug bool `flag:"show-debug-on-error" cfg:"show_debug_on_error"`
}

func templatesFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("templates", pflag.ExitOnError)

	flagSet.String("custom-templates-dir", "", "path to custom html templates")
	flagSet.String("footer", "", "custom footer string. Use \"-\" to disable default footer.")
	flagSet.Bool("show-debug-on-error", false, "show detailed error information on error pages (WARNING: this may contain sensitive information - do not use in production)")

	return flagSet
}

// templatesDefaults creates a Templates and populates it with any default values
func templatesDefaults() Templates {
	return Templates{}
}
