package outbound

import "context"

type EnhanceScriptRequest struct {
	Script string
	Title  string
}

type ScriptEnhancerPort interface {
	Enhance(ctx context.Context, req EnhanceScriptRequest) (string, error)
}
