package routes

import (
	gocontext "context"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/api"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/utils"

	"gorm.io/gorm"
)

type GetStakingsRequest struct {
	PaginatedRequest
	Token            string `json:"token" validate:"required,token-symbol"`
	LiquidityAddress string `json:"liquidityAddress" validate:"required,chain-address"`
}

type ledgerRouteHandlers struct {
	db *gorm.DB
}

func newLedgerRouteHandlers(ctx context.ServicesContext) *ledgerRouteHandlers {
	return &ledgerRouteHandlers{
		db: ctx.DB(),
	}
}

func (lr *ledgerRouteHandlers) getBalance() utils.RouteHandler {
	handler := func(_ gocontext.Context, params map[string]string) (*api.ApiBalance, *utils.ErrorHandler) {
		token, errHandler := lr.tokenParam(params["token"])
		if errHandler != nil {
			return nil, errHandler
		}
		address, errHandler := lr.addressParam(params["address"])
		if errHandler != nil {
			return nil, errHandler
		}
		balance, err := database.FetchBalance(lr.db, token, address)
		if err != nil {
			return nil, utils.InternalServerErrorHandler(err)
		}
		if balance == nil {
			return nil, utils.NotFoundErrorHandler("balance")
		}
		return &api.ApiBalance{
			Token:            params["token"],
			Address:          params["address"],
			BlockNumber:      balance.BlockNumber,
			TransactionCount: balance.TransactionCount,
			Vout:             balance.Vout,
			Vin:              balance.Vin,
			Net:              balance.Net(),
		}, nil
	}
	return utils.NewParamRouteHandler(handler, map[string]string{
		"token":   "Token symbol",
		"address": "Chain address",
	}, &api.ApiBalance{})
}

func (lr *ledgerRouteHandlers) listDeposits() utils.RouteHandler {
	handler := func(_ gocontext.Context, params map[string]string) ([]api.ApiDeposit, *utils.ErrorHandler) {
		token, errHandler := lr.tokenParam(params["token"])
		if errHandler != nil {
			return nil, errHandler
		}
		liquidity, errHandler := lr.addressParam(params["liquidity"])
		if errHandler != nil {
			return nil, errHandler
		}
		deposits, err := database.FetchDepositsOfLiquidityAddress(lr.db, token, liquidity)
		if err != nil {
			return nil, utils.InternalServerErrorHandler(err)
		}
		numbers := make([]uint32, 0, 2*len(deposits))
		for _, d := range deposits {
			numbers = append(numbers, d.DepositAddressNumber, d.CustomerAddressNumber)
		}
		names, err := lr.addressNames(numbers)
		if err != nil {
			return nil, utils.InternalServerErrorHandler(err)
		}
		result := make([]api.ApiDeposit, len(deposits))
		for i, d := range deposits {
			result[i] = api.ApiDeposit{
				Token:                  params["token"],
				LiquidityAddress:       params["liquidity"],
				DepositAddress:         names[d.DepositAddressNumber],
				CustomerAddress:        names[d.CustomerAddressNumber],
				StartBlockNumber:       d.StartBlockNumber,
				StartTransactionNumber: d.StartTransactionNumber,
			}
		}
		return result, nil
	}
	return utils.NewParamRouteHandler(handler, map[string]string{
		"token":     "Token symbol",
		"liquidity": "Liquidity address",
	}, []api.ApiDeposit{})
}

func (lr *ledgerRouteHandlers) listStakings() utils.RouteHandler {
	handler := func(request GetStakingsRequest) ([]api.ApiStaking, *utils.ErrorHandler) {
		token, errHandler := lr.tokenParam(request.Token)
		if errHandler != nil {
			return nil, errHandler
		}
		liquidity, errHandler := lr.addressParam(request.LiquidityAddress)
		if errHandler != nil {
			return nil, errHandler
		}
		stakings, err := database.FetchStakingsOfLiquidityAddress(lr.db, token, liquidity, request.Offset, request.pageSize())
		if err != nil {
			return nil, utils.InternalServerErrorHandler(err)
		}
		numbers := make([]uint32, 0, 2*len(stakings))
		for _, s := range stakings {
			numbers = append(numbers, s.DepositAddressNumber, s.CustomerAddressNumber)
		}
		names, err := lr.addressNames(numbers)
		if err != nil {
			return nil, utils.InternalServerErrorHandler(err)
		}
		result := make([]api.ApiStaking, len(stakings))
		for i := range stakings {
			s := &stakings[i]
			result[i] = api.ApiStaking{
				Token:              request.Token,
				LiquidityAddress:   request.LiquidityAddress,
				DepositAddress:     names[s.DepositAddressNumber],
				CustomerAddress:    names[s.CustomerAddressNumber],
				LastInBlockNumber:  s.LastInBlockNumber,
				Vin:                s.Vin,
				LastOutBlockNumber: s.LastOutBlockNumber,
				Vout:               s.Vout,
				Net:                s.Net(),
			}
		}
		return result, nil
	}
	return utils.NewRouteHandler(handler, GetStakingsRequest{}, []api.ApiStaking{})
}

func (lr *ledgerRouteHandlers) tokenParam(symbol string) (uint32, *utils.ErrorHandler) {
	if err := utils.ValidateVar(symbol, "required,token-symbol"); err != nil {
		return 0, utils.InvalidRequestErrorHandler(err)
	}
	number, ok, err := database.FetchTokenNumber(lr.db, symbol)
	if err != nil {
		return 0, utils.InternalServerErrorHandler(err)
	}
	if !ok {
		return 0, utils.NotFoundErrorHandler("token " + symbol)
	}
	return number, nil
}

func (lr *ledgerRouteHandlers) addressParam(address string) (uint32, *utils.ErrorHandler) {
	if err := utils.ValidateVar(address, "required,chain-address"); err != nil {
		return 0, utils.InvalidRequestErrorHandler(err)
	}
	number, ok, err := database.FetchAddressNumber(lr.db, address)
	if err != nil {
		return 0, utils.InternalServerErrorHandler(err)
	}
	if !ok {
		return 0, utils.NotFoundErrorHandler("address " + address)
	}
	return number, nil
}

func (lr *ledgerRouteHandlers) addressNames(numbers []uint32) (map[uint32]string, error) {
	names := make(map[uint32]string, len(numbers))
	if len(numbers) == 0 {
		return names, nil
	}
	addresses, err := database.FetchAddressesByNumbers(lr.db, numbers)
	if err != nil {
		return nil, err
	}
	for _, a := range addresses {
		names[a.Number] = a.Address
	}
	return names, nil
}

func AddLedgerRoutes(router utils.Router, ctx context.ServicesContext) {
	lr := newLedgerRouteHandlers(ctx)
	subrouter := router.WithPrefix("/ledger", "Ledger")

	subrouter.AddRoute("/balances/{token}/{address}", lr.getBalance(),
		"Balance of an address", "Received and spent sums of a deposit or liquidity address up to its watermark block")
	subrouter.AddRoute("/deposits/{token}/{liquidity}", lr.listDeposits(),
		"Deposits of a liquidity address", "Deposit addresses clustered to the liquidity address with their customers")
	subrouter.AddRoute("/stakings", lr.listStakings(),
		"Stakings of a liquidity address", "Staked and withdrawn sums per deposit, paginated")
}
