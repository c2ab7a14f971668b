package routes

import (
	gocontext "context"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/api"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/utils"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"gorm.io/gorm"
)

type statusRouteHandlers struct {
	db     *gorm.DB
	client chain.Client
}

// Ingestion progress compared to the node's chain height
func (sr *statusRouteHandlers) getStatus() utils.RouteHandler {
	handler := func(ctx gocontext.Context, _ map[string]string) (*api.ApiStatus, *utils.ErrorHandler) {
		height, err := sr.client.GetBlockCount(ctx)
		if err != nil {
			return nil, utils.InternalServerErrorHandler(err)
		}
		status := &api.ApiStatus{ChainHeight: height}
		last, ok, err := database.FetchMaxBlockNumber(sr.db)
		if err != nil {
			return nil, utils.InternalServerErrorHandler(err)
		}
		if ok {
			status.LastIngestedBlock = &last
		}
		return status, nil
	}
	return utils.NewParamRouteHandler(handler, nil, &api.ApiStatus{})
}

func AddStatusRoutes(router utils.Router, ctx context.ServicesContext) {
	sr := &statusRouteHandlers{db: ctx.DB(), client: ctx.Client()}
	router.WithPrefix("/status", "Status").AddRoute("", sr.getStatus(), "Ingestion status")
}
