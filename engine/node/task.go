package node

import (
	"context"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/dashscope"
)

type getTaskResult struct {
	client   TaskClient
	settings Settings
}

func (n *getTaskResult) Name() Name {
	return GetTaskResult
}

func (n *getTaskResult) Execute(ctx context.Context, item core.Input) (core.Output, error) {
	defaults := core.CopyMaps(map[string]any{"waitForResult": false}, n.settings.imagePolling())
	var p TaskResultParams
	if err := decodeParams(item, defaults, &p); err != nil {
		return nil, err
	}
	var (
		res *dashscope.TaskResult
		err error
	)
	if p.WaitForResult {
		res, err = n.client.Poll(ctx, p.TaskID, dashscope.KindImage, p.Budget())
	} else {
		res, err = n.client.Query(ctx, p.TaskID, dashscope.KindImage)
	}
	if err != nil {
		return nil, FromError(err)
	}
	return buildRecord(res), nil
}

type getVideoTaskResult struct {
	client   TaskClient
	settings Settings
}

func (n *getVideoTaskResult) Name() Name {
	return GetVideoTaskResult
}

func (n *getVideoTaskResult) Execute(ctx context.Context, item core.Input) (core.Output, error) {
	defaults := core.CopyMaps(map[string]any{"pollingMode": PollingModeSingle}, n.settings.videoPolling())
	var p VideoTaskResultParams
	if err := decodeParams(item, defaults, &p); err != nil {
		return nil, err
	}
	var (
		res *dashscope.TaskResult
		err error
	)
	if p.PollingMode == PollingModePolling {
		res, err = n.client.Poll(ctx, p.TaskID, dashscope.KindVideo, p.Budget())
	} else {
		res, err = n.client.Query(ctx, p.TaskID, dashscope.KindVideo)
	}
	if err != nil {
		return nil, FromError(err)
	}
	return buildRecord(res), nil
}
