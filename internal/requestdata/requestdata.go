package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type RequestData struct {
	TokenString  string
	RefreshToken string
	UserID       uuid.UUID
}

type ctxKey struct{}

var requestDataKey ctxKey

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
