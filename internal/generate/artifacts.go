package generate

const envContent = `# Environment variables
PORT=3000
NODE_ENV=development
`

// EnvContent is the fixed .env written when dotenv is selected.
func EnvContent() string {
	return envContent
}

// Artifacts lists the files a new project consists of, in write order.
func Artifacts(cfg ProjectConfig) []GeneratedArtifact {
	out := []GeneratedArtifact{
		{RelativePath: ManifestFile, Content: ComposeManifest(cfg)},
		{RelativePath: EntryPointFile, Content: ComposeEntryPoint(cfg.Packages)},
	}
	if cfg.Uses(dotenvPackage) {
		out = append(out, GeneratedArtifact{RelativePath: EnvFile, Content: EnvContent()})
	}
	return out
}
