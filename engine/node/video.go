package node

import (
	"context"
	"net/http"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/dashscope"
	"github.com/compozy/dashscope/pkg/logger"
)

const DefaultVideoModel = "wanx2.1-t2v-turbo"

var VideoModels = []string{DefaultVideoModel, "wanx2.1-t2v-plus"}

type textToVideo struct {
	client   TaskClient
	settings Settings
}

func (n *textToVideo) Name() Name {
	return TextToVideo
}

func (n *textToVideo) defaults() map[string]any {
	return core.CopyMaps(map[string]any{
		"model":         DefaultVideoModel,
		"size":          "1280*720",
		"promptExtend":  true,
		"waitForResult": true,
	}, n.settings.videoPolling())
}

func (n *textToVideo) Execute(ctx context.Context, item core.Input) (core.Output, error) {
	var p VideoParams
	if err := decodeParams(item, n.defaults(), &p); err != nil {
		return nil, err
	}
	out, err := n.client.Submit(ctx, p.request())
	if err != nil {
		return nil, FromError(err)
	}
	if out.Handle == "" {
		return nil, FromError(&dashscope.APIError{
			StatusCode: http.StatusOK,
			Code:       "InvalidResponse",
			Message:    "video submission returned no task id",
			RequestID:  out.Response.RequestID,
			Body:       out.Response.Raw(),
		})
	}
	if !p.WaitForResult {
		return buildRecord(out.Result()), nil
	}
	logger.FromContext(ctx).Debug("Waiting for video task", "task_id", out.Handle, "budget", p.Budget())
	res, err := n.client.Await(ctx, out, p.Budget())
	if err != nil {
		return nil, FromError(err)
	}
	return buildRecord(res), nil
}
