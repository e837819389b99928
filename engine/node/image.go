package node

import (
	"context"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/pkg/logger"
)

const DefaultImageModel = "wanx2.1-t2i-turbo"

// ImageModels lists the image models offered by default.
var ImageModels = []string{DefaultImageModel, "wanx2.0", "wanx-v1", "stable-diffusion-xl"}

type textToImage struct {
	client   TaskClient
	settings Settings
}

func (n *textToImage) Name() Name {
	return TextToImage
}

func (n *textToImage) defaults() map[string]any {
	return core.CopyMaps(map[string]any{
		"model":         DefaultImageModel,
		"size":          "1024*1024",
		"n":             1,
		"async":         true,
		"waitForResult": true,
	}, n.settings.imagePolling())
}

func (n *textToImage) Execute(ctx context.Context, item core.Input) (core.Output, error) {
	var p ImageParams
	if err := decodeParams(item, n.defaults(), &p); err != nil {
		return nil, err
	}
	out, err := n.client.Submit(ctx, p.request())
	if err != nil {
		return nil, FromError(err)
	}
	if out.Completed || !p.WaitForResult {
		return buildRecord(out.Result()), nil
	}
	logger.FromContext(ctx).Debug("Waiting for image task", "task_id", out.Handle, "budget", p.Budget())
	res, err := n.client.Await(ctx, out, p.Budget())
	if err != nil {
		return nil, FromError(err)
	}
	return buildRecord(res), nil
}
