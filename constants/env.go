package constants

const (
	EnvLogLevel     = "TORNADO_LOG_LEVEL"
	EnvDebug        = "TORNADO_DEBUG"
	EnvOtelEnabled  = "TORNADO_OTEL_ENABLED"
	EnvOtelEndpoint = "TORNADO_OTEL_ENDPOINT"
	EnvOtelProtocol = "TORNADO_OTEL_PROTOCOL"
)
