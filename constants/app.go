package constants

const (
	APPNAME    = "tornado"
	APPVERSION = "0.1.0"

	// EngineFileExtension is the extension of the engine configuration file,
	// located as <APPNAME>.<EngineFileExtension> (tornado.toml).
	EngineFileExtension = "toml"

	// NodeFileExtension is the extension of node and rule definition files
	// inside the rules directory.
	NodeFileExtension = ".json"
)
