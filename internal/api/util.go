package api

func (b *Backend) QuirksDoesSupportLegacyPeerDeps() bool {
	return (b.Quirks & QuirksLegacyPeerDeps) != 0
}

func (b *Backend) QuirksIsGlobalSubcommand() bool {
	return (b.Quirks & QuirksGlobalIsSubcommand) != 0
}
