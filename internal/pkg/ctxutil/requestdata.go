package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries the authenticated caller identity for the lifetime of
// one HTTP request.
type RequestData struct {
	UID  string
	Role string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(Default(ctx), requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	rd, _ := ctx.Value(requestDataKey{}).(*RequestData)
	return rd
}
