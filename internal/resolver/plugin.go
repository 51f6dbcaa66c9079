package resolver

import (
	"github.com/evanw/esbuild/pkg/api"
)

// PluginName is the esbuild plugin name.
const PluginName = "zip-fs"

// Plugin adapts src to an esbuild plugin that claims every specifier and
// loads every module in Namespace.
func Plugin(src ModuleSource) api.Plugin {
	return api.Plugin{
		Name: PluginName,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					kind := KindImport
					if args.Kind == api.ResolveEntryPoint {
						kind = KindEntryPoint
					}
					res, err := src.Resolve(args.Path, kind, args.Importer)
					if err != nil {
						return api.OnResolveResult{}, err
					}
					return api.OnResolveResult{
						Path:      res.Path,
						Namespace: res.Namespace,
						External:  res.External,
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: Namespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					mod, err := src.Load(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					contents := mod.Contents
					return api.OnLoadResult{
						Contents: &contents,
						Loader:   esbuildLoader(mod.Loader),
					}, nil
				})
		},
	}
}

func esbuildLoader(l Loader) api.Loader {
	if l == LoaderTSX {
		return api.LoaderTSX
	}
	return api.LoaderTS
}
