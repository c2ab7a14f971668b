package custom

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Amount of a token moved from or to an address
type Transfer struct {
	Address string
	Token   string
	Amount  decimal.Decimal
}

type transferKey struct {
	address string
	token   string
}

// Balances of one address as reported by the node: either a single string
// "amount@token,amount@token" or a list of "amount@token" strings
type balances []string

func (b *balances) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*b = balances{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.Wrap(err, "balances must be a string or a list of strings")
	}
	*b = list
	return nil
}

// Parse "amount@token,amount@token,..."; amounts must be positive
func ParseAmounts(s string) ([]Transfer, error) {
	var result []Transfer
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) == 0 {
			continue
		}
		sep := strings.LastIndex(part, "@")
		if sep <= 0 || sep == len(part)-1 {
			return nil, errors.Errorf("malformed amount %q", part)
		}
		amount, err := decimal.NewFromString(part[:sep])
		if err != nil {
			return nil, errors.Wrapf(err, "malformed amount %q", part)
		}
		if !amount.IsPositive() {
			return nil, errors.Errorf("non-positive amount %q", part)
		}
		result = append(result, Transfer{Token: part[sep+1:], Amount: amount})
	}
	if len(result) == 0 {
		return nil, errors.Errorf("no amounts in %q", s)
	}
	return result, nil
}

// Transfers of an address -> balances map, merged per (address, token)
func parseAccounts(accounts map[string]balances) ([]Transfer, error) {
	var transfers []Transfer
	for address, bs := range accounts {
		if len(address) == 0 {
			return nil, errors.New("empty address")
		}
		for _, b := range bs {
			amounts, err := ParseAmounts(b)
			if err != nil {
				return nil, errors.Wrapf(err, "address %s", address)
			}
			for _, a := range amounts {
				a.Address = address
				transfers = append(transfers, a)
			}
		}
	}
	return mergeTransfers(transfers), nil
}

// Sum transfers with the same address and token; the result is sorted by address and token
func mergeTransfers(transfers []Transfer) []Transfer {
	sums := make(map[transferKey]decimal.Decimal)
	for _, t := range transfers {
		k := transferKey{t.Address, t.Token}
		if s, ok := sums[k]; ok {
			sums[k] = s.Add(t.Amount)
		} else {
			sums[k] = t.Amount
		}
	}
	merged := make([]Transfer, 0, len(sums))
	for k, amount := range sums {
		merged = append(merged, Transfer{Address: k.address, Token: k.token, Amount: amount})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Address != merged[j].Address {
			return merged[i].Address < merged[j].Address
		}
		return merged[i].Token < merged[j].Token
	})
	return merged
}

func sumPerToken(transfers []Transfer) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, t := range transfers {
		if s, ok := sums[t.Token]; ok {
			sums[t.Token] = s.Add(t.Amount)
		} else {
			sums[t.Token] = t.Amount
		}
	}
	return sums
}

func checkConservation(from []Transfer, to []Transfer) error {
	fromSums := sumPerToken(from)
	toSums := sumPerToken(to)
	if len(fromSums) != len(toSums) {
		return errors.Errorf("tokens of sources and destinations differ")
	}
	for token, sum := range fromSums {
		if toSum, ok := toSums[token]; !ok || !toSum.Equal(sum) {
			return errors.Errorf("token %s: sent %s, received %s", token, sum, toSum)
		}
	}
	return nil
}
