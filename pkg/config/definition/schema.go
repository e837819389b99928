package definition

import (
	"reflect"
	"time"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	stringType   = reflect.TypeOf("")
	intType      = reflect.TypeOf(0)
	boolType     = reflect.TypeOf(false)
)

// CreateRegistry creates and populates the configuration registry.
// It is the single source of truth for defaults, flags and env names.
func CreateRegistry() *Registry {
	registry := NewRegistry()
	registerDashScopeFields(registry)
	registerPollingFields(registry)
	registerRuntimeFields(registry)
	registerBatchFields(registry)
	return registry
}

func registerDashScopeFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "dashscope.base_url",
		Default: "https://dashscope.aliyuncs.com/api/v1",
		CLIFlag: "base-url",
		EnvVar:  "DASHSCOPE_BASE_URL",
		Type:    stringType,
		Help:    "DashScope API base URL",
	})
	registry.Register(&FieldDef{
		Path:    "dashscope.api_key",
		Default: "",
		CLIFlag: "api-key",
		EnvVar:  "DASHSCOPE_API_KEY",
		Type:    stringType,
		Help:    "DashScope API key",
	})
	registry.Register(&FieldDef{
		Path:    "dashscope.request_timeout",
		Default: 60 * time.Second,
		CLIFlag: "request-timeout",
		EnvVar:  "DASHSCOPE_REQUEST_TIMEOUT",
		Type:    durationType,
		Help:    "Timeout for a single HTTP request",
	})
	registry.Register(&FieldDef{
		Path:    "dashscope.user_agent",
		Default: "dashscope-go",
		EnvVar:  "DASHSCOPE_USER_AGENT",
		Type:    stringType,
		Help:    "User-Agent header sent with every request",
	})
}

func registerPollingFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "polling.image_interval",
		Default: 2 * time.Second,
		EnvVar:  "DASHSCOPE_IMAGE_POLL_INTERVAL",
		Type:    durationType,
		Help:    "Wait between status queries for image tasks",
	})
	registry.Register(&FieldDef{
		Path:    "polling.image_max_attempts",
		Default: 30,
		EnvVar:  "DASHSCOPE_IMAGE_MAX_ATTEMPTS",
		Type:    intType,
		Help:    "Status queries before an image task times out",
	})
	registry.Register(&FieldDef{
		Path:    "polling.video_interval",
		Default: 15 * time.Second,
		EnvVar:  "DASHSCOPE_VIDEO_POLL_INTERVAL",
		Type:    durationType,
		Help:    "Wait between status queries for video tasks",
	})
	registry.Register(&FieldDef{
		Path:    "polling.video_max_attempts",
		Default: 60,
		EnvVar:  "DASHSCOPE_VIDEO_MAX_ATTEMPTS",
		Type:    intType,
		Help:    "Status queries before a video task times out",
	})
	registry.Register(&FieldDef{
		Path:    "polling.max_wait",
		Default: time.Duration(0),
		CLIFlag: "max-wait",
		EnvVar:  "DASHSCOPE_MAX_WAIT",
		Type:    durationType,
		Help:    "Wall-clock polling ceiling; 0 uses the attempt ceilings",
	})
	registry.Register(&FieldDef{
		Path:    "polling.transport_retries",
		Default: 0,
		CLIFlag: "transport-retries",
		EnvVar:  "DASHSCOPE_TRANSPORT_RETRIES",
		Type:    intType,
		Help:    "Retries for a status query that got no HTTP response",
	})
	registry.Register(&FieldDef{
		Path:    "polling.retry_backoff",
		Default: 500 * time.Millisecond,
		EnvVar:  "DASHSCOPE_RETRY_BACKOFF",
		Type:    durationType,
		Help:    "Wait between transport retries",
	})
}

func registerRuntimeFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "runtime.log_level",
		Default: "info",
		CLIFlag: "log-level",
		EnvVar:  "DASHSCOPE_LOG_LEVEL",
		Type:    stringType,
		Help:    "Log level (debug, info, warn, error, disabled)",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_json",
		Default: false,
		CLIFlag: "log-json",
		EnvVar:  "DASHSCOPE_LOG_JSON",
		Type:    boolType,
		Help:    "Emit logs as JSON",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.http_debug",
		Default: false,
		CLIFlag: "http-debug",
		EnvVar:  "DASHSCOPE_HTTP_DEBUG",
		Type:    boolType,
		Help:    "Log raw HTTP traffic at debug level",
	})
}

func registerBatchFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "batch.concurrency",
		Default: 1,
		CLIFlag: "concurrency",
		EnvVar:  "DASHSCOPE_BATCH_CONCURRENCY",
		Type:    intType,
		Help:    "Items processed at the same time",
	})
	registry.Register(&FieldDef{
		Path:    "batch.continue_on_fail",
		Default: false,
		CLIFlag: "continue-on-fail",
		EnvVar:  "DASHSCOPE_CONTINUE_ON_FAIL",
		Type:    boolType,
		Help:    "Record item failures instead of aborting the batch",
	})
}
