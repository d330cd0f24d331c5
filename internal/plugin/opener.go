package plugin

import stdplugin "plugin"

// goPluginOpener is the production Opener, backed by Go's native
// -buildmode=plugin loader.
type goPluginOpener struct{}

func (goPluginOpener) Open(path string) (OpenedPlugin, error) {
	p, err := stdplugin.Open(path)
	if err != nil {
		return nil, err
	}
	return goPlugin{p}, nil
}

type goPlugin struct {
	p *stdplugin.Plugin
}

func (g goPlugin) Lookup(symbolName string) (Symbol, error) {
	return g.p.Lookup(symbolName)
}
