package dashscope

import "fmt"

// ResourceKind selects the endpoint and artifact layout of a task.
type ResourceKind string

const (
	KindImage ResourceKind = "image"
	KindVideo ResourceKind = "video"
	// KindTask is used when querying a task whose resource is not known.
	KindTask ResourceKind = "task"
)

const (
	DefaultBaseURL = "https://dashscope.aliyuncs.com/api/v1"
	TasksPath      = "/tasks"
	HeaderAsync    = "X-DashScope-Async"
)

type endpointDef struct {
	submitPath    string
	forceAsync    bool
	artifactField string
	artifacts     func(*TaskOutput) []string
}

var resources = map[ResourceKind]endpointDef{
	KindImage: {
		submitPath:    "/services/aigc/text2image/image-synthesis",
		artifactField: "image_url",
		artifacts:     resultURLs,
	},
	KindVideo: {
		submitPath:    "/services/aigc/video-generation/video-synthesis",
		forceAsync:    true,
		artifactField: "video_url",
		artifacts:     videoURL,
	},
	KindTask: {
		artifactField: "artifact_url",
		artifacts: func(out *TaskOutput) []string {
			return append(resultURLs(out), videoURL(out)...)
		},
	},
}

func lookupResource(kind ResourceKind) (endpointDef, error) {
	def, ok := resources[kind]
	if !ok {
		return endpointDef{}, fmt.Errorf("%w: unknown resource kind %q", ErrInvalidRequest, kind)
	}
	return def, nil
}

// ArtifactField names the output-record field carrying the primary artifact URL.
func (k ResourceKind) ArtifactField() string {
	if def, ok := resources[k]; ok {
		return def.artifactField
	}
	return "artifact_url"
}

// Artifacts extracts the usable artifact URLs of out for this kind.
func (k ResourceKind) Artifacts(out *TaskOutput) []string {
	if out == nil {
		return nil
	}
	def, ok := resources[k]
	if !ok {
		def = resources[KindTask]
	}
	return def.artifacts(out)
}

func resultURLs(out *TaskOutput) []string {
	var urls []string
	for _, r := range out.Results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

func videoURL(out *TaskOutput) []string {
	if out.VideoURL == "" {
		return nil
	}
	return []string{out.VideoURL}
}
