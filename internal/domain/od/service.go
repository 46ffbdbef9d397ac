package od

import (
	"context"
)

type ODService interface {
	Submit(ctx context.Context, req SubmitODRequest) (ODResponse, error)
	Decide(ctx context.Context, req DecideODRequest) (ODResponse, error)
	Unlock(ctx context.Context, req UnlockODRequest) (ODResponse, error)
	GetOD(ctx context.Context, id string) (ODResponse, error)
	ListODs(ctx context.Context, filter ODFilter) (ListODResponse, error)
	GetMyODs(ctx context.Context, filter ODFilter) (ListODResponse, error)
}
