package bundler

import (
	"errors"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/ziadkadry99/ziprun/internal/archive"
	rerrors "github.com/ziadkadry99/ziprun/internal/errors"
	"github.com/ziadkadry99/ziprun/internal/logging"
	"github.com/ziadkadry99/ziprun/internal/resolver"
)

// Result is a successful build.
type Result struct {
	// Code is the bundled ECMAScript module.
	Code string

	// Modules lists the archive files that went into Code.
	Modules []string

	// Externals lists bare specifiers left for the host page.
	Externals []string

	// Warnings holds formatted esbuild warnings.
	Warnings []string
}

// Options returns the esbuild options for bundling entryPath with plugin as
// the only resolver.
func Options(entryPath string, plugin api.Plugin) api.BuildOptions {
	return api.BuildOptions{
		EntryPoints: []string{entryPath},
		Bundle:      true,
		Format:      api.FormatESModule,
		Write:       false,
		JSX:         api.JSXAutomatic,
		Loader: map[string]api.Loader{
			".ts":  api.LoaderTS,
			".tsx": api.LoaderTSX,
		},
		Plugins: []api.Plugin{plugin},
	}
}

// Bundle builds the module graph rooted at entryPath out of files.
func (r *Runtime) Bundle(files *archive.Files, entryPath string) (*Result, error) {
	if err := r.Ready(); err != nil {
		return nil, rerrors.NewBuildError("bundler unavailable", err)
	}

	res := resolver.New(files, entryPath)
	out := api.Build(Options(entryPath, resolver.Plugin(res)))

	if len(out.Errors) > 0 {
		// The plugin's typed error is flattened into an esbuild message;
		// prefer the original so callers can match on it.
		if failure := res.Failure(); failure != nil {
			return nil, failure
		}
		return nil, rerrors.NewBuildError("build failed", errors.New(formatMessages(out.Errors, api.ErrorMessage)))
	}
	if len(out.OutputFiles) == 0 || len(out.OutputFiles[0].Contents) == 0 {
		return nil, rerrors.NewBuildError("build produced no output", nil)
	}

	result := &Result{
		Code:      string(out.OutputFiles[0].Contents),
		Modules:   res.Loaded(),
		Externals: res.Externals(),
	}
	if len(out.Warnings) > 0 {
		for _, w := range api.FormatMessages(out.Warnings, api.FormatMessagesOptions{Kind: api.WarningMessage}) {
			result.Warnings = append(result.Warnings, w)
			logging.Debug("bundler warning", "entry", entryPath, "message", w)
		}
	}
	return result, nil
}

// Bundle builds with the Shared runtime.
func Bundle(files *archive.Files, entryPath string) (*Result, error) {
	return Shared().Bundle(files, entryPath)
}
